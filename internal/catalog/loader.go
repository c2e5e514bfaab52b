package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
)

// Sentinel errors for the catalog loader
var (
	ErrEmptySnapshot = errors.New("snapshot contains no items")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// RawSnapshot is the wire shape of a remote catalog pull. Every field is
// optional: missing fields default safely and a malformed item is skipped
// individually rather than failing the whole load.
type RawSnapshot struct {
	Version string    `json:"version"`
	Items   []RawItem `json:"items"`
	Acts    []RawAct  `json:"acts"`
	// CombatRules maps attack effect id -> defense effect ids that counter it
	CombatRules map[string][]string `json:"combat_rules"`
	Notices     []RawNotice         `json:"notifications"`
	Config      *GlobalConfig       `json:"config"`
}

// RawItem mirrors domain.Item with loose typing for the wire
type RawItem struct {
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	Act                  int     `json:"act"`
	BaseCost             int64   `json:"base_cost"`
	Currency             string  `json:"currency"`
	ProductionRate       float64 `json:"production_rate"`
	ClickBonus           int64   `json:"click_bonus"`
	ProductionMultiplier float64 `json:"production_multiplier"`
	ClickMultiplier      float64 `json:"click_multiplier"`
	LossRate             float64 `json:"loss_rate"`
	EffectDurationSec    int     `json:"effect_duration_seconds"`
	RequiredItem         string  `json:"required_item"`
	RequiredItemCount    int     `json:"required_item_count"`
	EffectID             string  `json:"effect_id"`
}

// RawAct mirrors domain.ActMetadata
type RawAct struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	UnlockThreshold *float64 `json:"unlock_threshold"`
}

// RawNotice mirrors domain.NotificationRule
type RawNotice struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ConditionType  string `json:"condition_type"`
	ConditionValue string `json:"condition_value"`
}

// ParseCategory maps a wire category string onto the closed enum. Unknown
// strings land on CategoryUnknown so one bad row cannot break dispatch.
func ParseCategory(s string) domain.Category {
	switch s {
	case "production":
		return domain.CategoryProduction
	case "click_tool", "clicktool":
		return domain.CategoryClickTool
	case "upgrade":
		return domain.CategoryUpgrade
	case "milestone":
		return domain.CategoryMilestone
	case "defense":
		return domain.CategoryDefense
	case "attack":
		return domain.CategoryAttack
	case "cosmetic", "cosmetic_skin", "cosmetic_theme":
		return domain.CategoryCosmetic
	case "gift":
		return domain.CategoryGift
	}
	return domain.CategoryUnknown
}

func parseCurrency(s string) domain.Currency {
	if s == "premium" {
		return domain.CurrencyPremium
	}
	return domain.CurrencyPrimary
}

// Build converts a raw wire snapshot into an immutable Snapshot, substituting
// defaults per field. An item missing its mandatory name is skipped and
// logged; everything else degrades to a safe default.
func Build(ctx context.Context, raw *RawSnapshot) (*Snapshot, error) {
	if raw == nil {
		return nil, ErrInvalidConfig
	}
	if len(raw.Items) == 0 {
		return nil, ErrEmptySnapshot
	}

	log := logger.FromContext(ctx)

	snap := emptySnapshot()
	snap.Version = raw.Version

	for _, ri := range raw.Items {
		if ri.Name == "" {
			log.Warn(LogMsgItemSkipped, "category", ri.Category)
			continue
		}
		it := domain.Item{
			Name:                 ri.Name,
			Category:             ParseCategory(ri.Category),
			Act:                  ri.Act,
			BaseCost:             ri.BaseCost,
			Currency:             parseCurrency(ri.Currency),
			ProductionRate:       ri.ProductionRate,
			ClickBonus:           ri.ClickBonus,
			ProductionMultiplier: ri.ProductionMultiplier,
			ClickMultiplier:      ri.ClickMultiplier,
			LossRate:             ri.LossRate,
			EffectDurationSec:    ri.EffectDurationSec,
			RequiredItem:         ri.RequiredItem,
			RequiredItemCount:    ri.RequiredItemCount,
			EffectID:             ri.EffectID,
		}
		if it.Act == 0 {
			it.Act = 1
		}
		if it.ProductionMultiplier == 0 {
			it.ProductionMultiplier = DefaultMultiplier
		}
		if it.ClickMultiplier == 0 {
			it.ClickMultiplier = DefaultMultiplier
		}
		if _, dup := snap.Items[it.Name]; dup {
			log.Warn("Duplicate catalog item name, keeping first", "name", it.Name)
			continue
		}
		snap.Items[it.Name] = it
		snap.itemOrder = append(snap.itemOrder, it.Name)
	}

	if len(snap.Items) == 0 {
		return nil, ErrEmptySnapshot
	}

	for _, ra := range raw.Acts {
		threshold := DefaultUnlockThreshold
		if ra.UnlockThreshold != nil && *ra.UnlockThreshold >= 0 && *ra.UnlockThreshold <= 1 {
			threshold = *ra.UnlockThreshold
		}
		snap.Acts = append(snap.Acts, domain.ActMetadata{
			ID:              ra.ID,
			Title:           ra.Title,
			Description:     ra.Description,
			UnlockThreshold: threshold,
		})
	}

	for attackID, defenses := range raw.CombatRules {
		snap.Rules[attackID] = append([]string(nil), defenses...)
	}

	for _, rn := range raw.Notices {
		if rn.ID == "" {
			log.Warn("Skipping notification rule without an id")
			continue
		}
		snap.Notices = append(snap.Notices, domain.NotificationRule{
			ID:             rn.ID,
			Title:          rn.Title,
			Message:        rn.Message,
			ConditionType:  domain.ConditionType(rn.ConditionType),
			ConditionValue: rn.ConditionValue,
		})
	}

	if raw.Config != nil {
		snap.Config = *raw.Config
	}
	if snap.Config.PriceMultiplier <= 1 {
		snap.Config.PriceMultiplier = DefaultPriceMultiplier
	}
	if snap.Config.BaseClickValue <= 0 {
		snap.Config.BaseClickValue = DefaultBaseClickValue
	}

	return snap, nil
}

// Source supplies raw snapshot bytes from the remote-config collaborator.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads a snapshot from a local JSON file. It seeds the store at
// startup and doubles as the source for tests and air-gapped deployments.
type FileSource struct {
	Path string
}

// Fetch reads the snapshot file
func (f FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return data, nil
}

// Parse decodes raw snapshot bytes
func Parse(data []byte) (*RawSnapshot, error) {
	var raw RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &raw, nil
}
