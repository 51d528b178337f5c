package tip

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrTipNotFound = errors.New("tip not found")

const tipColumns = `id, tipper_id, creator_id, amount_cents, currency, message, status, source,
	payment_ref, failure_reason, refund_reason, idempotency_key, allocated_cents,
	created_at, completed_at, refunded_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tip) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO tips
			(tipper_id, creator_id, amount_cents, currency, message, status, source,
			 idempotency_key, allocated_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, NOW())
		RETURNING id, created_at
	`, t.TipperID, t.CreatorID, t.AmountCents, t.Currency, t.Message, t.Status,
		t.Source, t.IdempotencyKey).Scan(&t.ID, &t.CreatedAt)
}

func (r *repository) FindByID(ctx context.Context, id int) (*Tip, error) {
	var t Tip
	err := r.db.GetContext(ctx, &t, `
		SELECT `+tipColumns+`
		FROM tips
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTipNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, tipperID int, key string) (*Tip, error) {
	var t Tip
	err := r.db.GetContext(ctx, &t, `
		SELECT `+tipColumns+`
		FROM tips
		WHERE tipper_id = $1 AND idempotency_key = $2
	`, tipperID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTipNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) MarkCompleted(ctx context.Context, id int, paymentRef string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tips
		SET status = $2, payment_ref = $3, completed_at = $4
		WHERE id = $1
	`, id, StatusCompleted, paymentRef, at)
	return err
}

func (r *repository) MarkFailed(ctx context.Context, id int, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tips
		SET status = $2, failure_reason = $3
		WHERE id = $1
	`, id, StatusFailed, reason)
	return err
}

// MarkRefunded is guarded so a concurrent payout allocation or a second
// refund cannot slip in between the service's read and this write.
func (r *repository) MarkRefunded(ctx context.Context, id int, reason string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tips
		SET status = $2, refund_reason = $3, refunded_at = $4
		WHERE id = $1 AND status = $5 AND allocated_cents = 0
	`, id, StatusRefunded, reason, at, StatusCompleted)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID, limit int) ([]Tip, error) {
	var tips []Tip
	err := r.db.SelectContext(ctx, &tips, `
		SELECT `+tipColumns+`
		FROM tips
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, creatorID, limit)
	if err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *repository) ListByTipper(ctx context.Context, tipperID, limit int) ([]Tip, error) {
	var tips []Tip
	err := r.db.SelectContext(ctx, &tips, `
		SELECT `+tipColumns+`
		FROM tips
		WHERE tipper_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tipperID, limit)
	if err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *repository) CountCompletedByTipper(ctx context.Context, tipperID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM tips
		WHERE tipper_id = $1 AND status = $2
	`, tipperID, StatusCompleted)
	if err != nil {
		return 0, err
	}
	return count, nil
}
