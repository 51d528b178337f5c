package payout

import "context"

type Repository interface {
	// Allocate fills p.Allocations from the creator's oldest completed,
	// unrefunded tips and persists the payout and its breakdown in one
	// transaction. Row locks on the candidate tips keep two concurrent
	// requests from drawing the same tip balance.
	Allocate(ctx context.Context, p *Request) error
	FindByID(ctx context.Context, id int) (*Request, error)
	ListByCreator(ctx context.Context, creatorID int) ([]Request, error)
	// Complete marks a pending or processing payout completed. Allocated
	// tip balances stay consumed.
	Complete(ctx context.Context, payoutID int) (bool, error)
	// Fail marks the payout failed and releases its allocated tip balances
	// in the same transaction.
	Fail(ctx context.Context, payoutID int, reason string) (bool, error)
	// RequestedCents sums the amounts of this creator's payouts that are
	// not failed; it is subtracted from earnings to get the free balance.
	RequestedCents(ctx context.Context, creatorID int) (int64, error)
	TopTippers(ctx context.Context, creatorID, limit int) ([]TopTipper, error)
	GetSettings(ctx context.Context, creatorID int) (*Settings, error)
	UpsertSettings(ctx context.Context, s *Settings) error
}
