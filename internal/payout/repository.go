package payout

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPayoutNotFound   = errors.New("payout not found")
	ErrSettingsNotFound = errors.New("payout settings not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// candidate is one lockable tip balance during allocation.
type candidate struct {
	ID             int          `db:"id"`
	AmountCents    int64        `db:"amount_cents"`
	AllocatedCents int64        `db:"allocated_cents"`
	CompletedAt    sql.NullTime `db:"completed_at"`
}

func (r *repository) Allocate(ctx context.Context, p *Request) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var candidates []candidate
	err = tx.SelectContext(ctx, &candidates, `
		SELECT id, amount_cents, allocated_cents, completed_at
		FROM tips
		WHERE creator_id = $1
		  AND status = 'completed'
		  AND amount_cents > allocated_cents
		ORDER BY completed_at ASC
		FOR UPDATE
	`, p.CreatorID)
	if err != nil {
		return err
	}

	remaining := p.AmountCents
	allocations := make([]Allocation, 0, len(candidates))
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		draw := c.AmountCents - c.AllocatedCents
		if draw > remaining {
			draw = remaining
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE tips SET allocated_cents = allocated_cents + $2 WHERE id = $1
		`, c.ID, draw); err != nil {
			return err
		}

		allocations = append(allocations, Allocation{
			TipID:       c.ID,
			AmountCents: draw,
			TipDate:     c.CompletedAt.Time,
		})
		remaining -= draw
	}

	if remaining > 0 {
		// Not enough unallocated tip balance; rollback releases the locks
		// without having changed anything durable.
		return ErrInsufficientBalance
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payout_requests (creator_id, amount_cents, currency, status, snapshot, requested_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, requested_at
	`, p.CreatorID, p.AmountCents, p.Currency, StatusPending, p.Snapshot).Scan(&p.ID, &p.RequestedAt)
	if err != nil {
		return err
	}

	for i := range allocations {
		allocations[i].PayoutID = p.ID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payout_allocations (payout_id, tip_id, amount_cents, tip_date)
			VALUES ($1, $2, $3, $4)
		`, p.ID, allocations[i].TipID, allocations[i].AmountCents, allocations[i].TipDate); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	p.Status = StatusPending
	p.Allocations = allocations
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Request, error) {
	var p Request
	err := r.db.GetContext(ctx, &p, `
		SELECT id, creator_id, amount_cents, currency, status, snapshot,
		       failure_reason, requested_at, processed_at
		FROM payout_requests
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}

	err = r.db.SelectContext(ctx, &p.Allocations, `
		SELECT id, payout_id, tip_id, amount_cents, tip_date
		FROM payout_allocations
		WHERE payout_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID int) ([]Request, error) {
	var payouts []Request
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT id, creator_id, amount_cents, currency, status, snapshot,
		       failure_reason, requested_at, processed_at
		FROM payout_requests
		WHERE creator_id = $1
		ORDER BY requested_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) Complete(ctx context.Context, payoutID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payout_requests
		SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`, payoutID, StatusCompleted, StatusPending, StatusProcessing)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) Fail(ctx context.Context, payoutID int, reason string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE payout_requests
		SET status = $2, failure_reason = $3, processed_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)
	`, payoutID, StatusFailed, reason, StatusPending, StatusProcessing)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows != 1 {
		return false, nil
	}

	// Release the consumed tip balances so later payouts can draw them.
	if _, err := tx.ExecContext(ctx, `
		UPDATE tips
		SET allocated_cents = allocated_cents - a.amount_cents
		FROM payout_allocations a
		WHERE a.payout_id = $1 AND tips.id = a.tip_id
	`, payoutID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) RequestedCents(ctx context.Context, creatorID int) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payout_requests
		WHERE creator_id = $1 AND status != $2
	`, creatorID, StatusFailed)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) TopTippers(ctx context.Context, creatorID, limit int) ([]TopTipper, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.tipper_id, u.name, SUM(t.amount_cents) AS total_cents
		FROM tips t
		JOIN users u ON u.id = t.tipper_id
		WHERE t.creator_id = $1 AND t.status = 'completed'
		GROUP BY t.tipper_id, u.name
		ORDER BY total_cents DESC
		LIMIT $2
	`, creatorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tippers []TopTipper
	for rows.Next() {
		var t TopTipper
		if err := rows.Scan(&t.TipperID, &t.Name, &t.TotalCents); err != nil {
			return nil, err
		}
		tippers = append(tippers, t)
	}
	return tippers, rows.Err()
}

func (r *repository) GetSettings(ctx context.Context, creatorID int) (*Settings, error) {
	var s Settings
	err := r.db.GetContext(ctx, &s, `
		SELECT creator_id, method, account_name, account_number, updated_at
		FROM payout_settings
		WHERE creator_id = $1
	`, creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpsertSettings(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payout_settings (creator_id, method, account_name, account_number, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (creator_id) DO UPDATE SET
			method = EXCLUDED.method,
			account_name = EXCLUDED.account_name,
			account_number = EXCLUDED.account_number,
			updated_at = NOW()
	`, s.CreatorID, s.Method, s.AccountName, s.AccountNumber)
	return err
}
