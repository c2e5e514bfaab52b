package economy

import "time"

// Rate modifier constants
const (
	// MutePenalty is applied to production and click power while the device
	// is muted.
	MutePenalty = 0.1

	// FullGroupMultiplier doubles live production while every group member
	// holds an active session. It never applies to offline settlement.
	FullGroupMultiplier = 2.0

	// PerMemberBonus is the static production bonus per cooperative group
	// member. It applies to live ticking and to offline settlement.
	PerMemberBonus = 0.05
)

// Price cache sizing
const (
	PriceCacheSize = 1024
	PriceCacheTTL  = 5 * time.Minute
)
