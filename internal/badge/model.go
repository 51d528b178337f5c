package badge

import "time"

// Rarities, lowest to highest. Rare and above trigger a notification on
// unlock.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Activity types the evaluator is invoked with.
const (
	ActivityTipSent       = "tip_sent"
	ActivityTipReceived   = "tip_received"
	ActivityPostCreated   = "post_created"
	ActivityFollowerAdded = "follower_added"
)

// Badge is one awarded achievement. At most one row exists per
// (user, badge) pair; rows are immutable once created.
type Badge struct {
	ID                  int       `db:"id" json:"id"`
	UserID              int       `db:"user_id" json:"user_id"`
	BadgeID             string    `db:"badge_id" json:"badge_id"`
	Title               string    `db:"title" json:"title"`
	Rarity              string    `db:"rarity" json:"rarity"`
	XPReward            int       `db:"xp_reward" json:"xp_reward"`
	MonetaryRewardCents int64     `db:"monetary_reward_cents" json:"monetary_reward_cents,omitempty"`
	UnlockedAt          time.Time `db:"unlocked_at" json:"unlocked_at"`
}

// ActivityData is the snapshot of counters the caller already holds when it
// triggers an evaluation. Fields irrelevant to the activity type are zero.
type ActivityData struct {
	TipCount           int
	CumulativeTipCents int64
	PostCount          int
	FollowerCount      int
	EngagementRate     float64
}

// Kind selects the evaluation branch for a criterion.
type Kind string

const (
	KindCount     Kind = "count"
	KindStreak    Kind = "streak"
	KindAmount    Kind = "amount"
	KindComposite Kind = "composite"
)

// Count fields a count criterion can watch.
const (
	FieldTipCount      = "tip_count"
	FieldPostCount     = "post_count"
	FieldFollowerCount = "follower_count"
)

type Conditions struct {
	MinFollowers      int
	MinEngagementRate float64
	MinPosts          int
}

type Reward struct {
	XP            int
	MonetaryCents int64
	// TierRecheck re-derives the holder's tier from earnings after the
	// award. It never bumps a tier by itself.
	TierRecheck bool
}

// Criterion is one read-only catalog rule.
type Criterion struct {
	ID          string
	Title       string
	Description string
	Kind        Kind
	Field       string // count criteria only
	Target      int64
	Conditions  Conditions // composite criteria only
	Activities  []string
	Rarity      string
	Reward      Reward
}

func (c Criterion) AppliesTo(activityType string) bool {
	for _, a := range c.Activities {
		if a == activityType {
			return true
		}
	}
	return false
}
