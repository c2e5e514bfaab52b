package economy

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
)

// priceCache memoizes computed price tiers. Keys carry the snapshot version
// so a catalog refresh naturally invalidates old entries; the TTL bounds
// staleness if versions repeat.
type priceCache struct {
	lru *expirable.LRU[string, int64]
}

func newPriceCache(size int, ttl time.Duration) *priceCache {
	return &priceCache{lru: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func priceKey(version, name string, level int) string {
	return fmt.Sprintf("%s|%s|%d", version, name, level)
}

// PriceFor returns the cost of the next purchase of an item at the given
// owned level. Production and ClickTool items grow exponentially,
// round(base x multiplier^level); every other category is flat base cost.
func (e *Engine) PriceFor(snap *catalog.Snapshot, item domain.Item, level int) int64 {
	if !item.Category.DynamicPricing() {
		return item.BaseCost
	}

	key := priceKey(snap.Version, item.Name, level)
	if cost, ok := e.prices.lru.Get(key); ok {
		return cost
	}

	cost := int64(math.Round(float64(item.BaseCost) * math.Pow(snap.Config.PriceMultiplier, float64(level))))
	e.prices.lru.Add(key, cost)
	return cost
}
