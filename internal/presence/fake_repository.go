package presence

import (
	"context"
	"sync"
	"time"

	"github.com/tapline-games/tapline/internal/domain"
)

// FakeRepository is an in-memory group store for tests.
type FakeRepository struct {
	mu     sync.Mutex
	groups map[string]*domain.GroupState

	// GetErr, when set, is returned by GetGroup to simulate a store outage.
	GetErr error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{groups: make(map[string]*domain.GroupState)}
}

func (f *FakeRepository) CreateGroup(_ context.Context, group *domain.GroupState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.ID] = group
	return nil
}

func (f *FakeRepository) GetGroup(_ context.Context, groupID string) (*domain.GroupState, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups[groupID], nil
}

func (f *FakeRepository) AddMember(_ context.Context, groupID, memberID, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.groups[groupID]; ok {
		g.Members[memberID] = displayName
	}
	return nil
}

func (f *FakeRepository) RemoveMember(_ context.Context, groupID, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.groups[groupID]; ok {
		delete(g.Members, memberID)
		delete(g.LastSeen, memberID)
		delete(g.ActiveSessions, memberID)
	}
	return nil
}

func (f *FakeRepository) RecordHeartbeat(_ context.Context, groupID, memberID string, at time.Time, sessionActive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.groups[groupID]; ok {
		if _, member := g.Members[memberID]; !member {
			return domain.ErrNotGroupMember
		}
		g.LastSeen[memberID] = at
		g.ActiveSessions[memberID] = sessionActive
		g.LastActivity = at
	}
	return nil
}

func (f *FakeRepository) ClearSession(_ context.Context, groupID, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.groups[groupID]; ok {
		delete(g.ActiveSessions, memberID)
	}
	return nil
}
