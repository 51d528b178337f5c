package stats

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns the stats row, or ErrStatsNotFound when the creator has
	// no row yet.
	Get(ctx context.Context, creatorID int) (*CreatorStats, error)
	// InsertIfAbsent writes a first stats row; inserted is false when a
	// concurrent writer created the row first.
	InsertIfAbsent(ctx context.Context, s *CreatorStats) (inserted bool, err error)
	// UpdateVersioned writes the row only when its version still equals
	// expectedVersion; updated is false on a concurrent-writer conflict.
	UpdateVersioned(ctx context.Context, s *CreatorStats, expectedVersion int) (updated bool, err error)
	// SetCurrentStreak writes the derived streak field outside the
	// read-modify-write unit.
	SetCurrentStreak(ctx context.Context, creatorID, currentStreak int) error
	// ReceivedSince sums the creator's completed, unrefunded tip amounts
	// newer than the cutoff.
	ReceivedSince(ctx context.Context, creatorID int, since time.Time) (int64, error)
}
