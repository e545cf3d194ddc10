package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/orders/internal/config"
	"github.com/corray333/backend-labs/orders/internal/service/models/outbox"
)

type retryCall struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []outbox.OutboxMessage
	deleted []int64
	retries []retryCall
}

func (f *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msg)

	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > limit {
		return append([]outbox.OutboxMessage(nil), f.pending[:limit]...), nil
	}

	return append([]outbox.OutboxMessage(nil), f.pending...), nil
}

func (f *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries = append(f.retries, retryCall{id: id, retryCount: retryCount, lastError: lastError, nextRetryAt: next})

	return nil
}

type fakePublisher struct {
	fail map[int64]bool
	sent []int64
}

func (p *fakePublisher) Publish(_ context.Context, msg outbox.OutboxMessage) error {
	if p.fail[msg.ID] {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, msg.ID)

	return nil
}

func TestProcessMessages(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{
		{ID: 1, Topic: "orders.created", MaxRetries: 5},
		{ID: 2, Topic: "orders.created", RetryCount: 2, MaxRetries: 5},
	}}
	pub := &fakePublisher{fail: map[int64]bool{2: true}}

	w := NewWorker(repo, pub, config.OutboxConfig{RetryInterval: 30 * time.Second})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.processMessages(context.Background())

	if len(repo.deleted) != 1 || repo.deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", repo.deleted)
	}
	if len(repo.retries) != 1 {
		t.Fatalf("retries = %+v, want one", repo.retries)
	}

	r := repo.retries[0]
	if r.id != 2 || r.retryCount != 3 || r.lastError != "broker unavailable" {
		t.Errorf("retry = %+v", r)
	}
	if want := now.Add(120 * time.Second); !r.nextRetryAt.Equal(want) {
		t.Errorf("next retry = %s, want %s", r.nextRetryAt, want)
	}
}

func TestStartStops(t *testing.T) {
	repo := &fakeOutboxRepo{}
	w := NewWorker(repo, &fakePublisher{}, config.OutboxConfig{PollInterval: time.Millisecond})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
