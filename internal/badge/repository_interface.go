package badge

import "context"

type Repository interface {
	// ExistingBadgeIDs returns the set of badge ids the user already holds.
	ExistingBadgeIDs(ctx context.Context, userID int) (map[string]bool, error)
	// Insert writes the badge row; inserted is false when the (user, badge)
	// pair already exists.
	Insert(ctx context.Context, b *Badge) (inserted bool, err error)
	ListByUser(ctx context.Context, userID int) ([]Badge, error)
	// CreditReward adds xp and monetary reward to the user's progress row.
	CreditReward(ctx context.Context, userID int, xp int, monetaryCents int64) error
}
