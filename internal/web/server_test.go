package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-moodflix/internal/auth"
	"github.com/justestif/go-moodflix/internal/db"
	"github.com/justestif/go-moodflix/internal/mood"
	"github.com/justestif/go-moodflix/internal/query"
	"github.com/justestif/go-moodflix/internal/recommend"
	"github.com/justestif/go-moodflix/internal/rerank"
)

const testSecret = "web-test-secret"

type fakeRecommender struct {
	parsed   *query.ParsedQuery
	result   *recommend.Result
	err      error
	lastReq  recommend.Request
	lastMood string
}

func (f *fakeRecommender) Parse(_ context.Context, _ string, moodLabel string, response mood.Response) (*query.ParsedQuery, error) {
	f.lastMood = moodLabel
	if f.err != nil {
		return nil, f.err
	}
	p := *f.parsed
	p.MoodResponse = response
	return &p, nil
}

func (f *fakeRecommender) GetRecommendations(_ context.Context, req recommend.Request) (*recommend.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeHistory struct {
	mu      sync.Mutex
	entries []db.HistoryEntry
}

func (f *fakeHistory) Create(_ context.Context, e *db.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeHistory) ListForUser(_ context.Context, userID string, limit int) ([]db.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.HistoryEntry{}
	for _, e := range f.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistory) Delete(_ context.Context, id uuid.UUID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

type fakeFavorites struct {
	mu   sync.Mutex
	favs map[int32]db.Favorite
	err  error
}

func (f *fakeFavorites) Add(_ context.Context, fav *db.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.favs == nil {
		f.favs = map[int32]db.Favorite{}
	}
	f.favs[fav.MovieID] = *fav
	return nil
}

func (f *fakeFavorites) ListForUser(_ context.Context, userID string) ([]db.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []db.Favorite{}
	for _, fav := range f.favs {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeFavorites) Remove(_ context.Context, _ string, movieID int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.favs[movieID]; !ok {
		return db.ErrNotFound
	}
	delete(f.favs, movieID)
	return nil
}

type testEnv struct {
	handler   http.Handler
	rec       *fakeRecommender
	history   *fakeHistory
	favorites *fakeFavorites
}

func newTestEnv(t *testing.T, cfg ServerConfig, withStores bool) *testEnv {
	t.Helper()
	env := &testEnv{
		rec: &fakeRecommender{
			parsed: &query.ParsedQuery{Genres: []string{"Comedy"}, Keywords: []string{"rain"}},
			result: &recommend.Result{
				Results:      []rerank.RankedMovie{{ID: 7, Title: "Paddington", Score: 4.2}},
				Parsed:       &query.ParsedQuery{Genres: []string{"Comedy"}, Keywords: []string{"rain"}},
				MoodResponse: mood.Address,
			},
		},
	}
	deps := Deps{Recommender: env.rec}
	if withStores {
		verifier, err := auth.NewVerifier(testSecret)
		if err != nil {
			t.Fatalf("NewVerifier() error = %v", err)
		}
		env.history = &fakeHistory{}
		env.favorites = &fakeFavorites{}
		deps.History = env.history
		deps.Favorites = env.favorites
		deps.Verifier = verifier
	}
	env.handler = NewServer(cfg, deps).Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorEnvelope](t, rec).Error.Code
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	down := NewServer(ServerConfig{}, Deps{Recommender: env.rec, Health: fakePinger{err: errors.New("down")}}).Handler()
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status with failing db = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	env.do(t, http.MethodGet, "/api/moods", "", "")
	rec := env.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "moodflix_http_request_duration_seconds") {
		t.Error("metrics output missing HTTP request histogram")
	}
}

func TestMoods(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/api/moods", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		Moods []moodInfo `json:"moods"`
	}](t, rec)
	if len(body.Moods) != len(mood.All()) {
		t.Fatalf("got %d moods, want %d", len(body.Moods), len(mood.All()))
	}
	if body.Moods[0].Name != "Happy" || len(body.Moods[0].Genres) == 0 {
		t.Errorf("first mood = %+v", body.Moods[0])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"ok", `{"text":"rainy day","mood":"Sad","moodResponse":"address"}`, nil, http.StatusOK, ""},
		{"missing text", `{"mood":"Sad"}`, nil, http.StatusBadRequest, codeValidation},
		{"bad response mode", `{"text":"x","moodResponse":"ignore"}`, nil, http.StatusBadRequest, codeValidation},
		{"not json", `text=hello`, nil, http.StatusBadRequest, codeBadRequest},
		{"parse failure", `{"text":"x"}`, &query.ParseError{Stage: query.StageLoose, Err: errors.New("garbage")}, http.StatusUnprocessableEntity, codeParseError},
		{"internal failure", `{"text":"x"}`, errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, ServerConfig{}, false)
			env.rec.err = tt.err
			rec := env.do(t, http.MethodPost, "/api/parse", tt.body, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if got := errorCode(t, rec); got != tt.wantCode {
					t.Errorf("code = %q, want %q", got, tt.wantCode)
				}
				return
			}
			parsed := decode[query.ParsedQuery](t, rec)
			if parsed.MoodResponse != mood.Address || env.rec.lastMood != "Sad" {
				t.Errorf("parsed = %+v, mood = %q", parsed, env.rec.lastMood)
			}
		})
	}
}

func TestRecommendations(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodPost, "/api/recommendations", `{"text":"cheer me up","mood":"Sad","moodResponse":"address","limit":5}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.rec.lastReq.Limit != 5 || env.rec.lastReq.MoodResponse != mood.Address || env.rec.lastReq.Text != "cheer me up" {
		t.Errorf("request = %+v", env.rec.lastReq)
	}
	res := decode[recommend.Result](t, rec)
	if len(res.Results) != 1 || res.Results[0].ID != 7 || res.MoodResponse != mood.Address {
		t.Errorf("result = %+v", res)
	}

	rec = env.do(t, http.MethodPost, "/api/recommendations", `{"text":"x","limit":500}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit 500 status = %d, want 400", rec.Code)
	}
}

func TestRecommendations_NeedsClarification(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	env.rec.result = &recommend.Result{
		Results:            []rerank.RankedMovie{},
		Parsed:             &query.ParsedQuery{Genres: []string{}, Keywords: []string{}, Ambiguous: true},
		MoodResponse:       mood.Match,
		NeedsClarification: true,
	}
	rec := env.do(t, http.MethodPost, "/api/recommendations", `{"text":"hmm"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"needsClarification":true`) || !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPersistenceRoutes_NotMountedWithoutStores(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/api/history", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPersistenceRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, true)
	for _, path := range []string{"/api/history", "/api/favorites"} {
		rec := env.do(t, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
			continue
		}
		if got := errorCode(t, rec); got != codeUnauthorized {
			t.Errorf("GET %s code = %q", path, got)
		}
	}
	rec := env.do(t, http.MethodGet, "/api/history", "", "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestHistoryFlow(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, true)
	alice := token(t, "alice")
	bob := token(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/history", `{"mood":"Sad","moodResponse":"address","movieIds":[7,8],"query":"cheer me up"}`, alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[db.HistoryEntry](t, rec)
	if created.ID == uuid.Nil || len(created.MovieIDs) != 2 {
		t.Fatalf("created = %+v", created)
	}

	rec = env.do(t, http.MethodPost, "/api/history", `{"mood":"Sad"}`, alice)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing moodResponse status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/history", "", bob)
	list := decode[struct {
		History []db.HistoryEntry `json:"history"`
	}](t, rec)
	if len(list.History) != 0 {
		t.Errorf("bob sees %d entries, want 0", len(list.History))
	}

	rec = env.do(t, http.MethodGet, "/api/history?limit=10", "", alice)
	list = decode[struct {
		History []db.HistoryEntry `json:"history"`
	}](t, rec)
	if len(list.History) != 1 || list.History[0].Query != "cheer me up" {
		t.Errorf("alice history = %+v", list.History)
	}

	if rec := env.do(t, http.MethodGet, "/api/history?limit=0", "", alice); rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/history/not-a-uuid", "", alice); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/history/"+created.ID.String(), "", bob); rec.Code != http.StatusNotFound {
		t.Errorf("bob delete status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/history/"+created.ID.String(), "", alice); rec.Code != http.StatusNoContent {
		t.Errorf("alice delete status = %d, want 204", rec.Code)
	}
}

func TestFavoritesFlow(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, true)
	alice := token(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/favorites", `{"movieId":603,"title":"The Matrix","posterUrl":"https://image.tmdb.org/t/p/w500/x.jpg"}`, alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPost, "/api/favorites", `{"movieId":0,"title":""}`, alice); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid favorite status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/favorites", "", alice)
	list := decode[struct {
		Favorites []db.Favorite `json:"favorites"`
	}](t, rec)
	if len(list.Favorites) != 1 || list.Favorites[0].Title != "The Matrix" {
		t.Errorf("favorites = %+v", list.Favorites)
	}

	if rec := env.do(t, http.MethodDelete, "/api/favorites/abc", "", alice); rec.Code != http.StatusBadRequest {
		t.Errorf("bad movieID status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/favorites/603", "", alice); rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d, want 204", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/favorites/603", "", alice); rec.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", rec.Code)
	}

	env.favorites.err = errors.New("db down")
	rec = env.do(t, http.MethodGet, "/api/favorites", "", alice)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != codeInternal {
		t.Errorf("store failure status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, ServerConfig{RateLimitReqs: 1, RateLimitWindow: time.Minute}, false)
	if rec := env.do(t, http.MethodGet, "/api/moods", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/moods", "", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if got := errorCode(t, rec); got != codeRateLimited {
		t.Errorf("code = %q, want %q", got, codeRateLimited)
	}
	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz is rate limited: %d", rec.Code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	env := newTestEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != codeNotFound {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, Deps{Recommender: &fakeRecommender{}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
