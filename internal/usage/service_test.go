package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConsumeUpToLimit(t *testing.T) {
	svc := NewService(NewMemoryStore(), 3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		q, err := svc.Consume(ctx, "guest:abc")
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if q.Used != i {
			t.Fatalf("used = %d, want %d", q.Used, i)
		}
	}

	_, err := svc.Consume(ctx, "guest:abc")
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("err = %v, want ErrLimitReached", err)
	}
}

func TestConsumeIsPerCaller(t *testing.T) {
	svc := NewService(NewMemoryStore(), 1)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "guest:a"); err != nil {
		t.Fatalf("first caller: %v", err)
	}
	if _, err := svc.Consume(ctx, "guest:b"); err != nil {
		t.Fatalf("second caller should have its own allowance: %v", err)
	}
	if _, err := svc.Consume(ctx, "guest:a"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("first caller again: err = %v, want ErrLimitReached", err)
	}
}

func TestWindowRollsOver(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 1)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "guest:a"); err != nil {
		t.Fatal(err)
	}

	// Force yesterday's window so the next consume rolls over.
	store.mu.Lock()
	q := store.quotas["guest:a"]
	q.ResetsAt = time.Now().UTC().Add(-time.Hour)
	store.quotas["guest:a"] = q
	store.mu.Unlock()

	got, err := svc.Consume(ctx, "guest:a")
	if err != nil {
		t.Fatalf("post-rollover consume: %v", err)
	}
	if got.Used != 1 {
		t.Fatalf("used = %d, want 1 after rollover", got.Used)
	}
}

func TestCurrentDoesNotConsume(t *testing.T) {
	svc := NewService(NewMemoryStore(), 2)
	ctx := context.Background()

	q1, err := svc.Current(ctx, "guest:a")
	if err != nil {
		t.Fatal(err)
	}
	if q1.Used != 0 || q1.Remaining() != 2 {
		t.Fatalf("quota = %+v, want untouched", q1)
	}
	q2, err := svc.Current(ctx, "guest:a")
	if err != nil {
		t.Fatal(err)
	}
	if q2.Used != 0 {
		t.Fatalf("Current consumed quota: %+v", q2)
	}
}
