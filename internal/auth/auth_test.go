package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "moodflix",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestNewVerifier_MissingSecret(t *testing.T) {
	if _, err := NewVerifier(""); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewVerifier(\"\") error = %v, want ErrMissingSecret", err)
	}
}

func TestVerify(t *testing.T) {
	v, err := NewVerifier(testSecret, WithIssuer("moodflix"), WithLeeway(0))
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noExp := validClaims()
	noExp.ExpiresAt = nil
	noSub := validClaims()
	noSub.Subject = ""
	otherIssuer := validClaims()
	otherIssuer.Issuer = "elsewhere"

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), "user-42", false},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), "", true},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), "", true},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), "", true},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExp), "", true},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSub), "", true},
		{"other issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), otherIssuer), "", true},
		{"garbage", "not.a.token", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	var gotErr error
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	var gotUser string
	handler := v.Middleware(onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErr    error
		wantUser   string
	}{
		{"no header", "", http.StatusUnauthorized, ErrMissingToken, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ErrMissingToken, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ErrInvalidToken, ""},
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), http.StatusNoContent, nil, "user-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr, gotUser = nil, ""
			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErr != nil && !errors.Is(gotErr, tt.wantErr) {
				t.Errorf("onError got %v, want %v", gotErr, tt.wantErr)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestUserID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserID(req.Context()); ok {
		t.Error("UserID() on bare context = ok")
	}
}
