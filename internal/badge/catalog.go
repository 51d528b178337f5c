package badge

// TierRecheckRequested reports whether any of the awarded badges carries the
// tier-recheck reward flag. The caller re-derives the holder's tier from
// earnings; the flag never bumps a tier on its own.
func TierRecheckRequested(awarded []Badge) bool {
	for _, b := range awarded {
		for _, c := range Catalog {
			if c.ID == b.BadgeID && c.Reward.TierRecheck {
				return true
			}
		}
	}
	return false
}

// Catalog is the read-only criteria configuration. IDs are stable: they key
// the (user, badge) uniqueness guard in the badges table.
var Catalog = []Criterion{
	{
		ID:          "first_tip",
		Title:       "First Supporter",
		Description: "Sent your first tip",
		Kind:        KindCount,
		Field:       FieldTipCount,
		Target:      1,
		Activities:  []string{ActivityTipSent},
		Rarity:      RarityCommon,
		Reward:      Reward{XP: 100},
	},
	{
		ID:          "generous_ten",
		Title:       "Generous Backer",
		Description: "Sent 10 tips",
		Kind:        KindCount,
		Field:       FieldTipCount,
		Target:      10,
		Activities:  []string{ActivityTipSent},
		Rarity:      RarityRare,
		Reward:      Reward{XP: 500},
	},
	{
		ID:          "daily_supporter",
		Title:       "Daily Supporter",
		Description: "Tipped on 3 consecutive days",
		Kind:        KindStreak,
		Target:      3,
		Activities:  []string{ActivityTipSent},
		Rarity:      RarityCommon,
		Reward:      Reward{XP: 200},
	},
	{
		ID:          "weekly_streak",
		Title:       "Week of Giving",
		Description: "Tipped on 7 consecutive days",
		Kind:        KindStreak,
		Target:      7,
		Activities:  []string{ActivityTipSent},
		Rarity:      RarityRare,
		Reward:      Reward{XP: 500},
	},
	{
		ID:          "iron_streak",
		Title:       "Iron Streak",
		Description: "Tipped on 30 consecutive days",
		Kind:        KindStreak,
		Target:      30,
		Activities:  []string{ActivityTipSent},
		Rarity:      RarityLegendary,
		Reward:      Reward{XP: 2000, MonetaryCents: 500},
	},
	{
		ID:          "first_earnings",
		Title:       "First Earnings",
		Description: "Received your first tip",
		Kind:        KindAmount,
		Target:      1,
		Activities:  []string{ActivityTipReceived},
		Rarity:      RarityCommon,
		Reward:      Reward{XP: 100},
	},
	{
		ID:          "crowd_favorite",
		Title:       "Crowd Favorite",
		Description: "Received 100 tips",
		Kind:        KindCount,
		Field:       FieldTipCount,
		Target:      100,
		Activities:  []string{ActivityTipReceived},
		Rarity:      RarityEpic,
		Reward:      Reward{XP: 1000},
	},
	{
		ID:          "rising_star",
		Title:       "Rising Star",
		Description: "Earned $1,000 in tips",
		Kind:        KindAmount,
		Target:      100000,
		Activities:  []string{ActivityTipReceived},
		Rarity:      RarityRare,
		Reward:      Reward{XP: 1000, TierRecheck: true},
	},
	{
		ID:          "fan_magnet",
		Title:       "Fan Magnet",
		Description: "Reached 1,000 followers",
		Kind:        KindCount,
		Field:       FieldFollowerCount,
		Target:      1000,
		Activities:  []string{ActivityFollowerAdded},
		Rarity:      RarityEpic,
		Reward:      Reward{XP: 1000},
	},
	{
		ID:          "community_star",
		Title:       "Community Star",
		Description: "500 followers, 5% engagement and 50 posts",
		Kind:        KindComposite,
		Conditions:  Conditions{MinFollowers: 500, MinEngagementRate: 0.05, MinPosts: 50},
		Activities:  []string{ActivityPostCreated, ActivityFollowerAdded},
		Rarity:      RarityLegendary,
		Reward:      Reward{XP: 2000, MonetaryCents: 1000},
	},
}
