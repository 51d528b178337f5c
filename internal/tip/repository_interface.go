package tip

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Tip) error
	FindByID(ctx context.Context, id int) (*Tip, error)
	// FindByIdempotencyKey returns the tip a tipper already submitted under
	// the key, or ErrTipNotFound.
	FindByIdempotencyKey(ctx context.Context, tipperID int, key string) (*Tip, error)
	MarkCompleted(ctx context.Context, id int, paymentRef string, at time.Time) error
	MarkFailed(ctx context.Context, id int, reason string) error
	// MarkRefunded flips a completed, unallocated tip to refunded. Returns
	// false when the guard fails (already refunded, failed, or allocated).
	MarkRefunded(ctx context.Context, id int, reason string, at time.Time) (bool, error)
	ListByCreator(ctx context.Context, creatorID, limit int) ([]Tip, error)
	ListByTipper(ctx context.Context, tipperID, limit int) ([]Tip, error)
	CountCompletedByTipper(ctx context.Context, tipperID int) (int, error)
}
