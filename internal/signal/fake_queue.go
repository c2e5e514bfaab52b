package signal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tapline-games/tapline/internal/domain"
)

// FakeQueue is an in-memory signal queue for tests, FIFO per user.
type FakeQueue struct {
	mu      sync.Mutex
	pending []domain.InboundSignal

	// PendingErr, when set, is returned by Pending to simulate a read outage.
	PendingErr error
}

func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

func (f *FakeQueue) Enqueue(_ context.Context, sig domain.InboundSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, sig)
	return nil
}

func (f *FakeQueue) Pending(_ context.Context, userID string, limit int) ([]domain.InboundSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PendingErr != nil {
		return nil, f.PendingErr
	}
	var out []domain.InboundSignal
	for _, sig := range f.pending {
		if sig.UserID != userID {
			continue
		}
		out = append(out, sig)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *FakeQueue) Ack(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sig := range f.pending {
		if sig.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len reports how many signals remain queued across all users.
func (f *FakeQueue) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Stored returns a copy of the queued signals.
func (f *FakeQueue) Stored() []domain.InboundSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.InboundSignal(nil), f.pending...)
}
