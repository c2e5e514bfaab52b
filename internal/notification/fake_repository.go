package notification

import (
	"context"
	"sync"
)

// FakeRepository is an in-memory shown-set store for tests.
type FakeRepository struct {
	mu    sync.Mutex
	shown map[string]map[string]bool

	// MarkErr, when set, is returned by MarkShown to simulate a write failure.
	MarkErr error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{shown: make(map[string]map[string]bool)}
}

func (f *FakeRepository) GetShown(_ context.Context, userID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.shown[userID]))
	for id := range f.shown[userID] {
		out[id] = true
	}
	return out, nil
}

func (f *FakeRepository) MarkShown(_ context.Context, userID, ruleID string) error {
	if f.MarkErr != nil {
		return f.MarkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shown[userID] == nil {
		f.shown[userID] = make(map[string]bool)
	}
	f.shown[userID][ruleID] = true
	return nil
}

func (f *FakeRepository) ClearShown(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.shown, userID)
	return nil
}
