package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline-games/tapline/internal/domain"
)

func newTestService(repo *FakeRepository) *service {
	return &service{repo: repo, now: time.Now}
}

func TestGroupLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create seeds the leader as member", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		group, err := svc.CreateGroup(ctx, "brewers", "u1", "Alex")
		require.NoError(t, err)
		assert.NotEmpty(t, group.ID)
		assert.Equal(t, "u1", group.LeaderID)
		assert.Equal(t, "Alex", group.Members["u1"])
	})

	t.Run("join and leave", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		group, err := svc.CreateGroup(ctx, "brewers", "u1", "Alex")
		require.NoError(t, err)

		require.NoError(t, svc.JoinGroup(ctx, group.ID, "u2", "Sam"))
		assert.ErrorIs(t, svc.JoinGroup(ctx, group.ID, "u2", "Sam"), domain.ErrAlreadyMember)

		require.NoError(t, svc.LeaveGroup(ctx, group.ID, "u2"))
		assert.ErrorIs(t, svc.LeaveGroup(ctx, group.ID, "u2"), domain.ErrNotGroupMember)
	})

	t.Run("unknown group errors", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		assert.ErrorIs(t, svc.JoinGroup(ctx, "missing", "u1", "Alex"), domain.ErrGroupNotFound)
		assert.ErrorIs(t, svc.Heartbeat(ctx, "missing", "u1"), domain.ErrGroupNotFound)
		_, err := svc.Status(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("heartbeat requires membership", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		group, err := svc.CreateGroup(ctx, "brewers", "u1", "Alex")
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Heartbeat(ctx, group.ID, "stranger"), domain.ErrNotGroupMember)
	})
}

func TestFullGroupOnline(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeRepository())

	group, err := svc.CreateGroup(ctx, "brewers", "u1", "Alex")
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(ctx, group.ID, "u2", "Sam"))

	t.Run("not full until every member has a live session", func(t *testing.T) {
		require.NoError(t, svc.Heartbeat(ctx, group.ID, "u1"))

		members, full := svc.Bonus(ctx, group.ID)
		assert.Equal(t, 2, members)
		assert.False(t, full)
	})

	t.Run("full once all sessions are live", func(t *testing.T) {
		require.NoError(t, svc.Heartbeat(ctx, group.ID, "u2"))

		_, full := svc.Bonus(ctx, group.ID)
		assert.True(t, full)

		status, err := svc.Status(ctx, group.ID)
		require.NoError(t, err)
		assert.True(t, status.FullGroupOnline)
		assert.Equal(t, 2, status.OnlineCount)
	})

	t.Run("stopping a session drops the flag immediately", func(t *testing.T) {
		require.NoError(t, svc.StopSession(ctx, group.ID, "u2"))

		_, full := svc.Bonus(ctx, group.ID)
		assert.False(t, full, "stale lastSeen must not keep the bonus alive")
	})
}

func TestMemberOnlineWindow(t *testing.T) {
	group := &domain.GroupState{
		ID:             "g1",
		Members:        map[string]string{"u1": "Alex"},
		LastSeen:       map[string]time.Time{},
		ActiveSessions: map[string]bool{},
	}
	now := time.Now()

	group.LastSeen["u1"] = now.Add(-domain.OnlineWindow + time.Second)
	assert.True(t, group.MemberOnline("u1", now))

	group.LastSeen["u1"] = now.Add(-domain.OnlineWindow - time.Second)
	assert.False(t, group.MemberOnline("u1", now))
}

func TestBonusDegradesToZero(t *testing.T) {
	ctx := context.Background()

	t.Run("empty group id", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		members, full := svc.Bonus(ctx, "")
		assert.Zero(t, members)
		assert.False(t, full)
	})

	t.Run("unknown group", func(t *testing.T) {
		svc := newTestService(NewFakeRepository())
		members, full := svc.Bonus(ctx, "missing")
		assert.Zero(t, members)
		assert.False(t, full)
	})

	t.Run("store outage", func(t *testing.T) {
		repo := NewFakeRepository()
		repo.GetErr = errors.New("connection refused")
		svc := newTestService(repo)
		members, full := svc.Bonus(ctx, "g1")
		assert.Zero(t, members)
		assert.False(t, full)
	})
}
