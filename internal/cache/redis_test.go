package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestNew_Disabled(t *testing.T) {
	r, err := New(context.Background(), Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("New() error = %v, want ErrDisabled", err)
	}
	if r != nil {
		t.Errorf("New() = %v, want nil", r)
	}
}

func TestNilRedis_AlwaysMisses(t *testing.T) {
	var r *Redis
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"))
	if _, ok := r.Get(ctx, "k"); ok {
		t.Error("Get() on nil cache hit")
	}
	if err := r.SetJSON(ctx, "k", map[string]int{"a": 1}); err != nil {
		t.Errorf("SetJSON() error = %v", err)
	}
	var dest map[string]int
	found, err := r.GetJSON(ctx, "k", &dest)
	if found || err != nil {
		t.Errorf("GetJSON() = (%v, %v), want (false, nil)", found, err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestUnreachable_CountsAsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewFromClient(client, 0, "test:")
	t.Cleanup(func() { r.Close() })

	if r.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", r.ttl, DefaultTTL)
	}
	ctx := context.Background()
	r.Set(ctx, "k", []byte("v"))
	if body, ok := r.Get(ctx, "k"); ok {
		t.Errorf("Get() = %q, want miss", body)
	}
	if _, err := r.GetJSON(ctx, "k", &struct{}{}); err == nil {
		t.Error("GetJSON() error = nil, want connection error")
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("MOODFLIX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOODFLIX_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := New(ctx, Config{Addr: addr, TTL: time.Minute, Prefix: "test:" + uuid.NewString() + ":"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })

	if _, ok := r.Get(ctx, "missing"); ok {
		t.Error("Get(missing) hit")
	}
	r.Set(ctx, "raw", []byte(`{"page":1}`))
	if body, ok := r.Get(ctx, "raw"); !ok || string(body) != `{"page":1}` {
		t.Errorf("Get(raw) = (%q, %v)", body, ok)
	}

	type entry struct {
		IDs []int `json:"ids"`
	}
	if err := r.SetJSON(ctx, "json", entry{IDs: []int{1, 2}}); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	var got entry
	found, err := r.GetJSON(ctx, "json", &got)
	if err != nil || !found || len(got.IDs) != 2 {
		t.Errorf("GetJSON() = (%v, %v, %+v)", found, err, got)
	}
}
