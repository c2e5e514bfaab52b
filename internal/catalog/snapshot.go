package catalog

import (
	"sync/atomic"

	"github.com/tapline-games/tapline/internal/domain"
)

// GlobalConfig carries the remotely tunable economy values shipped with a
// catalog snapshot.
type GlobalConfig struct {
	PriceMultiplier float64 `json:"price_multiplier"`
	BaseClickValue  int64   `json:"base_click_value"`
	Maintenance     bool    `json:"maintenance"`
}

// Snapshot is one immutable catalog generation: item definitions, act
// metadata, combat rules, notification rules, and global config. Engines hold
// a Snapshot by reference; a refresh swaps the whole snapshot atomically and
// never mutates one in place while readers may be iterating.
type Snapshot struct {
	Items     map[string]domain.Item
	Acts      []domain.ActMetadata
	Rules     domain.CombatRules
	Notices   []domain.NotificationRule
	Config    GlobalConfig
	Version   string
	itemOrder []string
}

// Item looks up an item by its stable name key.
func (s *Snapshot) Item(name string) (domain.Item, bool) {
	it, ok := s.Items[name]
	return it, ok
}

// ItemByEffectID finds the item carrying the given effect id.
func (s *Snapshot) ItemByEffectID(effectID string) (domain.Item, bool) {
	if effectID == "" {
		return domain.Item{}, false
	}
	for _, name := range s.itemOrder {
		if it := s.Items[name]; it.EffectID == effectID {
			return it, true
		}
	}
	return domain.Item{}, false
}

// ItemsInAct returns the Production and ClickTool items tagged with the given
// act, in catalog order. This is the population the act-unlock predicate
// counts.
func (s *Snapshot) ItemsInAct(act int) []domain.Item {
	var out []domain.Item
	for _, name := range s.itemOrder {
		it := s.Items[name]
		if it.Act != act {
			continue
		}
		if it.Category == domain.CategoryProduction || it.Category == domain.CategoryClickTool {
			out = append(out, it)
		}
	}
	return out
}

// AllItems returns every item in catalog order.
func (s *Snapshot) AllItems() []domain.Item {
	out := make([]domain.Item, 0, len(s.itemOrder))
	for _, name := range s.itemOrder {
		out = append(out, s.Items[name])
	}
	return out
}

// ItemsInCategory returns all items of a category in catalog order.
func (s *Snapshot) ItemsInCategory(c domain.Category) []domain.Item {
	var out []domain.Item
	for _, name := range s.itemOrder {
		if it := s.Items[name]; it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

// Act returns metadata for an act id, if present.
func (s *Snapshot) Act(id int) (domain.ActMetadata, bool) {
	for _, a := range s.Acts {
		if a.ID == id {
			return a, true
		}
	}
	return domain.ActMetadata{}, false
}

// Store holds the current snapshot behind an atomic pointer. The sync
// collaborator swaps it; engines read it lock-free.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a Store seeded with an empty snapshot so readers never see
// nil.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot())
	return s
}

// Snapshot returns the current catalog generation.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Swap atomically replaces the current snapshot. Each refresh is a full
// replacement, never a merge.
func (s *Store) Swap(next *Snapshot) {
	s.current.Store(next)
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Items: make(map[string]domain.Item),
		Rules: make(domain.CombatRules),
		Config: GlobalConfig{
			PriceMultiplier: DefaultPriceMultiplier,
			BaseClickValue:  DefaultBaseClickValue,
		},
	}
}
