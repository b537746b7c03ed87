package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemory_SerializesSameKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	release, err := m.Acquire(ctx, "farm-1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	other, err := m.Acquire(ctx, "farm-2")
	if err != nil {
		t.Fatalf("Expected independent key to be free: %v", err)
	}
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := m.Acquire(waitCtx, "farm-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline while key is held, got %v", err)
	}

	release()
	release()

	again, err := m.Acquire(ctx, "farm-1")
	if err != nil {
		t.Fatalf("Expected key to be free after release: %v", err)
	}
	again()
}

func TestRedis_AcquireRelease(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	l := NewRedis(client, "labour:")
	l.Retry = 5 * time.Millisecond
	ctx := context.Background()

	release, err := l.Acquire(ctx, "assign:u1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !srv.Exists("labour:assign:u1") {
		t.Fatal("Expected lock key to be set")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, "assign:u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline while key is held, got %v", err)
	}

	release()
	if srv.Exists("labour:assign:u1") {
		t.Fatal("Expected lock key to be deleted on release")
	}
}

func TestRedis_ReleaseKeepsForeignLock(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	l := NewRedis(client, "")
	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Simulate expiry and takeover by another instance.
	if err := srv.Set("k", "someone-else"); err != nil {
		t.Fatal(err)
	}
	release()

	if got, _ := srv.Get("k"); got != "someone-else" {
		t.Errorf("Expected foreign lock to survive, got %q", got)
	}
}
