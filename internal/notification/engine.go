package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/metrics"
	"github.com/tapline-games/tapline/internal/repository"
)

// View carries the derived metrics rules evaluate against, computed by the
// player owner at mutation time.
type View struct {
	CurrentAct int
	Pps        float64
	Score      int64
}

// Service evaluates notification rules against player state. Each rule fires
// at most once per installation: the rule id is persisted to the shown-set
// before the firing is announced, so a crash between the two suppresses
// rather than duplicates.
type Service interface {
	Evaluate(ctx context.Context, snap *catalog.Snapshot, st *domain.PlayerState, view View) (*domain.NotificationRule, error)
	ClearShown(ctx context.Context, userID string) error
}

type service struct {
	repo  repository.Notification
	bus   event.Bus
	title cases.Caser
}

// NewService creates a notification rule engine
func NewService(repo repository.Notification, bus event.Bus) Service {
	return &service{
		repo:  repo,
		bus:   bus,
		title: cases.Title(language.English),
	}
}

// Evaluate walks the loaded rules not yet shown and fires the first satisfied
// one. Returns the fired rule, or nil when nothing fired.
func (s *service) Evaluate(ctx context.Context, snap *catalog.Snapshot, st *domain.PlayerState, view View) (*domain.NotificationRule, error) {
	shown, err := s.repo.GetShown(ctx, st.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shown set: %w", err)
	}

	for _, rule := range snap.Notices {
		if shown[rule.ID] {
			continue
		}
		if !s.satisfied(rule, snap, st, view) {
			continue
		}

		// Persist before announcing: at-most-once beats at-least-once here.
		if err := s.repo.MarkShown(ctx, st.UserID, rule.ID); err != nil {
			return nil, fmt.Errorf("failed to mark rule shown: %w", err)
		}

		fired := rule
		fired.Message = s.renderMessage(rule, st)
		metrics.NotificationsFired.WithLabelValues(string(rule.ConditionType)).Inc()

		if s.bus != nil {
			if err := s.bus.Publish(ctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.NotificationFired,
				Payload: event.NotificationFiredPayloadV1{
					UserID:  st.UserID,
					RuleID:  fired.ID,
					Title:   fired.Title,
					Message: fired.Message,
				},
			}); err != nil {
				logger.FromContext(ctx).Warn("Notification event publish failed", "rule_id", fired.ID, "error", err)
			}
		}

		return &fired, nil
	}

	return nil, nil
}

func (s *service) ClearShown(ctx context.Context, userID string) error {
	return s.repo.ClearShown(ctx, userID)
}

func (s *service) satisfied(rule domain.NotificationRule, snap *catalog.Snapshot, st *domain.PlayerState, view View) bool {
	switch rule.ConditionType {
	case domain.ConditionDirect:
		return true

	case domain.ConditionActReached:
		threshold, err := strconv.Atoi(rule.ConditionValue)
		return err == nil && view.CurrentAct >= threshold

	case domain.ConditionPpsReached:
		threshold, err := strconv.ParseFloat(rule.ConditionValue, 64)
		return err == nil && view.Pps >= threshold

	case domain.ConditionScoreReached:
		threshold, err := strconv.ParseInt(rule.ConditionValue, 10, 64)
		return err == nil && view.Score >= threshold

	case domain.ConditionItemBought:
		return st.Level(rule.ConditionValue) > 0

	case domain.ConditionCountInCategory:
		category, value, ok := strings.Cut(rule.ConditionValue, ":")
		if !ok {
			return false
		}
		threshold, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		total := 0
		for _, it := range snap.ItemsInCategory(catalog.ParseCategory(category)) {
			total += st.Level(it.Name)
		}
		return total >= threshold
	}

	return false
}

// renderMessage substitutes the {item} placeholder for ItemBought rules with
// the title-cased item name.
func (s *service) renderMessage(rule domain.NotificationRule, st *domain.PlayerState) string {
	if rule.ConditionType != domain.ConditionItemBought {
		return rule.Message
	}
	display := s.title.String(strings.ReplaceAll(rule.ConditionValue, "_", " "))
	return strings.ReplaceAll(rule.Message, "{item}", display)
}
