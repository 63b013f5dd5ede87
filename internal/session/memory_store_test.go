package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillverify_backend/internal/model"
)

func testContent() Content {
	return Content{
		Questions: []Question{
			{Prompt: "p", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		},
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, 7, "javascript", "intermediate", model.KindMultipleChoice, testContent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session id not assigned")
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Fatal("expiry must be after creation")
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != 7 || got.Skill != "javascript" {
		t.Fatalf("wrong session returned: %+v", got)
	}
	if got.Content.Questions[0].CorrectAnswer != "a" {
		t.Fatal("stored content must keep the answer key")
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreConsumeIsSingleUse(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, testContent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.Consume(ctx, sess.ID); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := store.Consume(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second consume should fail with ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after consume should fail with ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiryIsLazy(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	sess, err := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, testContent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One second before expiry the session is still live.
	store.now = func() time.Time { return now.Add(10*time.Minute - time.Second) }
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("session expired early: %v", err)
	}

	// Past expiry both read paths report not-found, indistinguishable from
	// a missing id.
	store.now = func() time.Time { return now.Add(10*time.Minute + time.Second) }
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if _, err := store.Consume(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on consume after expiry, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	sess, _ := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, testContent())
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an unknown id is a no-op.
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete of missing id should succeed: %v", err)
	}
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	stale, _ := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, testContent())

	store.now = func() time.Time { return now.Add(5 * time.Minute) }
	fresh, _ := store.Create(ctx, 2, "go", "beginner", model.KindMultipleChoice, testContent())

	store.now = func() time.Time { return now.Add(12 * time.Minute) }
	reaped, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("reaped = %d, want 1", reaped)
	}

	if _, err := store.Get(ctx, stale.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("stale session should be gone")
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session should survive the reap: %v", err)
	}
}

func TestMemoryStoreSessionIDsAreUnique(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sess, err := store.Create(ctx, 1, "go", "beginner", model.KindMultipleChoice, testContent())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[sess.ID] {
			t.Fatalf("duplicate session id %s", sess.ID)
		}
		seen[sess.ID] = true
	}
}
