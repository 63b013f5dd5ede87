package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"skillverify_backend/internal/model"
)

type countingExpirer struct {
	calls int64
}

func (c *countingExpirer) DeleteExpired(ctx context.Context) (int, error) {
	atomic.AddInt64(&c.calls, 1)
	return 0, nil
}

func TestReaperRunsUntilCancelled(t *testing.T) {
	expirer := &countingExpirer{}
	reaper := NewReaper(expirer, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	reaper.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&expirer.calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("reaper never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	// After cancellation the tick count settles.
	time.Sleep(30 * time.Millisecond)
	settled := atomic.LoadInt64(&expirer.calls)
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt64(&expirer.calls); got != settled {
		t.Fatalf("reaper kept running after cancel: %d -> %d", settled, got)
	}
}

func TestReaperRemovesExpiredSessions(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, Content{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reaper := NewReaper(store, 10*time.Millisecond)
	reaper.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		store.mu.Lock()
		_, present := store.sessions[sess.ID]
		store.mu.Unlock()
		if !present {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expired session was never reaped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
