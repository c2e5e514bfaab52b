package player

import (
	"context"
	"sync"

	"github.com/tapline-games/tapline/internal/domain"
)

// FakeRepository is an in-memory player blob store for tests. It stores deep
// clones so mutations of live state cannot leak into persisted copies.
type FakeRepository struct {
	mu     sync.Mutex
	states map[string]*domain.PlayerState
	saves  int

	saveErr error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{states: make(map[string]*domain.PlayerState)}
}

func (f *FakeRepository) GetPlayerState(_ context.Context, userID string) (*domain.PlayerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[userID]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

func (f *FakeRepository) SavePlayerState(_ context.Context, state *domain.PlayerState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[state.UserID] = state.Clone()
	f.saves++
	return nil
}

func (f *FakeRepository) DeletePlayerState(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, userID)
	return nil
}

// Seed installs a state directly, bypassing the save counter.
func (f *FakeRepository) Seed(state *domain.PlayerState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.UserID] = state.Clone()
}

// Persisted returns a clone of the stored state, or nil if none.
func (f *FakeRepository) Persisted(userID string) *domain.PlayerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[userID]
	if !ok {
		return nil
	}
	return st.Clone()
}

// SaveCount reports how many durable writes have succeeded.
func (f *FakeRepository) SaveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// SetSaveErr injects a write failure for subsequent saves.
func (f *FakeRepository) SetSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}
