package badge

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ExistingBadgeIDs(ctx context.Context, userID int) (map[string]bool, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT badge_id FROM badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

func (r *repository) Insert(ctx context.Context, b *Badge) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO badges (user_id, badge_id, title, rarity, xp_reward, monetary_reward_cents, unlocked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, b.UserID, b.BadgeID, b.Title, b.Rarity, b.XPReward, b.MonetaryRewardCents, b.UnlockedAt)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Badge, error) {
	var badges []Badge
	err := r.db.SelectContext(ctx, &badges, `
		SELECT id, user_id, badge_id, title, rarity, xp_reward, monetary_reward_cents, unlocked_at
		FROM badges
		WHERE user_id = $1
		ORDER BY unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *repository) CreditReward(ctx context.Context, userID int, xp int, monetaryCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, xp_total, reward_cents, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			xp_total = user_progress.xp_total + EXCLUDED.xp_total,
			reward_cents = user_progress.reward_cents + EXCLUDED.reward_cents,
			updated_at = NOW()
	`, userID, xp, monetaryCents)
	return err
}
