package stats

import "time"

// CreatorStats is the per-creator running aggregate. One row per creator,
// created lazily on the first completed tip, mutated only through the
// versioned read-modify-write in the repository.
type CreatorStats struct {
	CreatorID          int        `db:"creator_id" json:"creator_id"`
	TotalReceivedCents int64      `db:"total_received_cents" json:"total_received_cents"`
	TotalEarningsCents int64      `db:"total_earnings_cents" json:"total_earnings_cents"`
	TipCount           int        `db:"tip_count" json:"tip_count"`
	AverageTipCents    int64      `db:"average_tip_cents" json:"average_tip_cents"`
	HighestTipCents    int64      `db:"highest_tip_cents" json:"highest_tip_cents"`
	LastTipDate        *time.Time `db:"last_tip_date" json:"last_tip_date,omitempty"`
	CurrentStreak      int        `db:"current_streak" json:"current_streak"`
	Tier               string     `db:"tier" json:"tier"`
	TierUpgradedAt     *time.Time `db:"tier_upgraded_at" json:"tier_upgraded_at,omitempty"`
	Version            int        `db:"version" json:"-"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// EarningsSummary is the read model behind the creator earnings endpoints.
type EarningsSummary struct {
	TotalEarningsCents int64 `json:"total_earnings_cents"`
	TotalReceivedCents int64 `json:"total_received_cents"`
	ThisWeekCents      int64 `json:"this_week_cents"`
	ThisMonthCents     int64 `json:"this_month_cents"`
	TipCount           int   `json:"tip_count"`
	AverageTipCents    int64 `json:"average_tip_cents"`
	HighestTipCents    int64 `json:"highest_tip_cents"`
	Tier               string `json:"tier"`
}
