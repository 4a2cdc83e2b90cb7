package walletauth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, ok, err := store.Get(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "token-1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	token, ok, err := store.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if token != "token-1" {
		t.Fatalf("unexpected token: %s", token)
	}

	if err := store.Put(ctx, "token-2"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	token, _, _ = store.Get(ctx)
	if token != "token-2" {
		t.Fatalf("expected replacement, got %s", token)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatal("expected cleared store")
	}
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := NewRedisStore(client, "walletauth:test:session", WithSessionTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Clear(context.Background()) })

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := store.Get(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "token-1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	token, ok, err := store.Get(ctx)
	if err != nil || !ok || token != "token-1" {
		t.Fatalf("Get after Put: token=%q ok=%v err=%v", token, ok, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Get(ctx); ok {
		t.Fatal("expected cleared store")
	}
}
