package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tapline-games/tapline/internal/combat"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/settlement"
)

// Service is the player-facing API: every operation is routed to the user's
// single mutation owner.
type Service interface {
	Click(ctx context.Context, userID string) (int64, error)
	Purchase(ctx context.Context, userID, itemName string) (economy.PurchaseResult, error)
	Defend(ctx context.Context, userID, itemName string) (combat.DefendResult, error)
	ApplyAttack(ctx context.Context, userID, effectID string, durationMin int, senderLabel, weaponLabel string) error
	ApplyGift(ctx context.Context, userID, giftEffectID, senderLabel string) error
	Resume(ctx context.Context, userID string) (settlement.Result, error)
	Depart(ctx context.Context, userID string) error
	SetMuted(ctx context.Context, userID string, muted bool) error
	SetGroup(ctx context.Context, userID, groupID string) error
	HardReset(ctx context.Context, userID string) error
	View(ctx context.Context, userID string) (StateView, error)
	OwnedConsumables(ctx context.Context, userID string, category domain.Category) ([]domain.Item, error)
	Shutdown(ctx context.Context) error
}

// Manager keeps one Owner per user, loading state lazily from the blob store
// and creating the all-zero aggregate on first contact.
type Manager struct {
	deps Deps

	mu     sync.Mutex
	owners map[string]*Owner
}

// NewManager creates the player service
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:   deps,
		owners: make(map[string]*Owner),
	}
}

// owner returns the live owner for a user, starting one if needed.
func (m *Manager) owner(ctx context.Context, userID string) (*Owner, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.owners[userID]; ok {
		return o, nil
	}

	state, err := m.deps.Repo.GetPlayerState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}
	if state == nil {
		state = domain.NewPlayerState(userID)
		if err := m.deps.Repo.SavePlayerState(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to create player state: %w", err)
		}
		logger.FromContext(ctx).Info("Created new player", "user_id", userID)
	}

	o := NewOwner(state, m.deps)
	m.owners[userID] = o
	return o, nil
}

func (m *Manager) Click(ctx context.Context, userID string) (int64, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return 0, err
	}
	return o.Click(ctx)
}

func (m *Manager) Purchase(ctx context.Context, userID, itemName string) (economy.PurchaseResult, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return economy.PurchaseResult{}, err
	}
	return o.Purchase(ctx, itemName)
}

func (m *Manager) Defend(ctx context.Context, userID, itemName string) (combat.DefendResult, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return combat.DefendResult{}, err
	}
	return o.Defend(ctx, itemName)
}

func (m *Manager) ApplyAttack(ctx context.Context, userID, effectID string, durationMin int, senderLabel, weaponLabel string) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.ApplyAttack(ctx, effectID, durationMin, senderLabel, weaponLabel)
}

func (m *Manager) ApplyGift(ctx context.Context, userID, giftEffectID, senderLabel string) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.ApplyGift(ctx, giftEffectID, senderLabel)
}

func (m *Manager) Resume(ctx context.Context, userID string) (settlement.Result, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return settlement.Result{}, err
	}
	return o.Resume(ctx)
}

func (m *Manager) Depart(ctx context.Context, userID string) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.Depart(ctx)
}

func (m *Manager) SetMuted(ctx context.Context, userID string, muted bool) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.SetMuted(ctx, muted)
}

func (m *Manager) SetGroup(ctx context.Context, userID, groupID string) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.SetGroup(ctx, groupID)
}

func (m *Manager) HardReset(ctx context.Context, userID string) error {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return err
	}
	return o.HardReset(ctx)
}

func (m *Manager) View(ctx context.Context, userID string) (StateView, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return StateView{}, err
	}
	return o.View(ctx)
}

func (m *Manager) OwnedConsumables(ctx context.Context, userID string, category domain.Category) ([]domain.Item, error) {
	o, err := m.owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return o.OwnedConsumables(ctx, category)
}

// ReevaluateNotifications re-runs the notification rules for every live
// owner. Called on catalog refresh so that rules delivered by the new
// snapshot can fire for idle players too.
func (m *Manager) ReevaluateNotifications(ctx context.Context) {
	m.mu.Lock()
	owners := make([]*Owner, 0, len(m.owners))
	for _, o := range m.owners {
		owners = append(owners, o)
	}
	m.mu.Unlock()

	for _, o := range owners {
		if err := o.ReevaluateNotifications(ctx); err != nil && !errors.Is(err, ErrOwnerStopped) {
			logger.FromContext(ctx).Warn("Notification re-evaluation failed", "error", err)
		}
	}
}

// Shutdown stops every live owner; each departs first, persisting its
// departure stamp for offline settlement.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	owners := make([]*Owner, 0, len(m.owners))
	for _, o := range m.owners {
		owners = append(owners, o)
	}
	m.owners = make(map[string]*Owner)
	m.mu.Unlock()

	var firstErr error
	for _, o := range owners {
		if err := o.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
