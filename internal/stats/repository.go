package stats

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrStatsNotFound = errors.New("creator stats not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, creatorID int) (*CreatorStats, error) {
	var s CreatorStats
	err := r.db.GetContext(ctx, &s, `
		SELECT creator_id, total_received_cents, total_earnings_cents, tip_count,
		       average_tip_cents, highest_tip_cents, last_tip_date, current_streak,
		       tier, tier_upgraded_at, version, updated_at
		FROM creator_stats
		WHERE creator_id = $1
	`, creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) InsertIfAbsent(ctx context.Context, s *CreatorStats) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO creator_stats
			(creator_id, total_received_cents, total_earnings_cents, tip_count,
			 average_tip_cents, highest_tip_cents, last_tip_date, current_streak,
			 tier, tier_upgraded_at, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, NOW())
		ON CONFLICT (creator_id) DO NOTHING
	`, s.CreatorID, s.TotalReceivedCents, s.TotalEarningsCents, s.TipCount,
		s.AverageTipCents, s.HighestTipCents, s.LastTipDate, s.CurrentStreak,
		s.Tier, s.TierUpgradedAt)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) UpdateVersioned(ctx context.Context, s *CreatorStats, expectedVersion int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE creator_stats
		SET total_received_cents = $2,
		    total_earnings_cents = $3,
		    tip_count = $4,
		    average_tip_cents = $5,
		    highest_tip_cents = $6,
		    last_tip_date = $7,
		    tier = $8,
		    tier_upgraded_at = $9,
		    version = version + 1,
		    updated_at = NOW()
		WHERE creator_id = $1 AND version = $10
	`, s.CreatorID, s.TotalReceivedCents, s.TotalEarningsCents, s.TipCount,
		s.AverageTipCents, s.HighestTipCents, s.LastTipDate,
		s.Tier, s.TierUpgradedAt, expectedVersion)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) SetCurrentStreak(ctx context.Context, creatorID, currentStreak int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE creator_stats
		SET current_streak = $2, version = version + 1, updated_at = NOW()
		WHERE creator_id = $1
	`, creatorID, currentStreak)
	return err
}

func (r *repository) ReceivedSince(ctx context.Context, creatorID int, since time.Time) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM tips
		WHERE creator_id = $1 AND status = 'completed' AND completed_at >= $2
	`, creatorID, since)
	if err != nil {
		return 0, err
	}
	return total, nil
}
