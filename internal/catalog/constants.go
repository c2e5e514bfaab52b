package catalog

// Economy defaults substituted when a snapshot omits global config fields
const (
	DefaultPriceMultiplier = 1.2
	DefaultBaseClickValue  int64 = 1

	// DefaultUnlockThreshold is the owned fraction of the previous act's
	// items required to unlock an act when its metadata omits one.
	DefaultUnlockThreshold = 0.9

	// DefaultMultiplier is substituted for zero/absent item multipliers so a
	// sparse catalog row cannot zero out a product of multipliers.
	DefaultMultiplier = 1.0
)

// Log messages
const (
	LogMsgItemSkipped      = "Skipping catalog item without a name"
	LogMsgSnapshotLoaded   = "Catalog snapshot loaded"
	LogMsgSnapshotRejected = "Catalog snapshot rejected, keeping previous generation"
)
