package tier

// Tier is a creator's monetization level derived from lifetime earnings.
type Tier string

const (
	Bronze   Tier = "bronze"
	Silver   Tier = "silver"
	Gold     Tier = "gold"
	Platinum Tier = "platinum"
)

// Definition maps an inclusive lower earnings bound (in cents) to a tier.
type Definition struct {
	Tier     Tier
	MinCents int64
}

// Ladder is the canonical tier table. Lifetime earnings are the single
// source of truth for tiers; badge counts never move a creator up a tier.
var Ladder = []Definition{
	{Bronze, 0},
	{Silver, 100000},
	{Gold, 500000},
	{Platinum, 1000000},
}

// Derive returns the tier for a creator's total earnings. Lower bounds are
// inclusive: exactly 1000.00 in earnings is silver.
func Derive(totalEarningsCents int64) Tier {
	current := Bronze
	for _, def := range Ladder {
		if totalEarningsCents >= def.MinCents {
			current = def.Tier
		}
	}
	return current
}

func rank(t Tier) int {
	for i, def := range Ladder {
		if def.Tier == t {
			return i
		}
	}
	return 0
}

// IsUpgrade reports whether moving from to next climbs the ladder. A refund
// that drops earnings below a threshold never downgrades: tiers are a high
// water mark, applied only on upgrade.
func IsUpgrade(from, to Tier) bool {
	return rank(to) > rank(from)
}
