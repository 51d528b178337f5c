package streak

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	RecentSentDates(ctx context.Context, tipperID, window int) ([]time.Time, error)
	RecentReceivedDates(ctx context.Context, creatorID, window int) ([]time.Time, error)
	SaveRecord(ctx context.Context, userID int, res Result) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecentSentDates(ctx context.Context, tipperID, window int) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.SelectContext(ctx, &dates, `
		SELECT completed_at
		FROM tips
		WHERE tipper_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $2
	`, tipperID, window)
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *repository) RecentReceivedDates(ctx context.Context, creatorID, window int) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.SelectContext(ctx, &dates, `
		SELECT completed_at
		FROM tips
		WHERE creator_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $2
	`, creatorID, window)
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// SaveRecord refreshes the cached streak row. The row is derived state and
// is always recomputable from tip history.
func (r *repository) SaveRecord(ctx context.Context, userID int, res Result) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO streak_records (user_id, current_streak, longest_streak, streak_start_date, last_activity, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			streak_start_date = EXCLUDED.streak_start_date,
			last_activity = EXCLUDED.last_activity,
			updated_at = NOW()
	`, userID, res.Current, res.Longest, res.StartDate, res.LastActivity)
	return err
}
