package domain

// TierLimits is the pure policy mapping a customer tier to its quotas.
// It performs no I/O and treats unknown tiers as basic.

// MaxOpenTopics returns how many open topics a customer of the given tier
// may hold at once.
func MaxOpenTopics(tier Tier) int {
	switch tier {
	case TierPremium:
		return 5
	case TierStandard:
		return 3
	default:
		return 1
	}
}

// MaxGenerationsPer24h returns how many topic history generations a customer
// of the given tier is allowed in a rolling 24 hour window.
func MaxGenerationsPer24h(tier Tier) int {
	switch tier {
	case TierPremium:
		return 5
	case TierStandard:
		return 3
	default:
		return 1
	}
}

// CanAddMoreTopics reports whether a customer of the given tier may open
// another topic given their current open topic count.
func CanAddMoreTopics(tier Tier, currentCount int) bool {
	return currentCount < MaxOpenTopics(tier)
}
