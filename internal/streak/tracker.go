package streak

import "context"

// Tracker computes tipping streaks over a bounded window of recent
// completed tips.
type Tracker interface {
	ForTipper(ctx context.Context, tipperID int) (Result, error)
	ForCreator(ctx context.Context, creatorID int) (Result, error)
}

type tracker struct {
	repo   Repository
	window int
}

func NewTracker(repo Repository, window int) Tracker {
	if window <= 0 {
		window = 30
	}
	return &tracker{repo: repo, window: window}
}

// ForTipper computes the streak of days on which the user sent tips and
// refreshes the cached streak record.
func (t *tracker) ForTipper(ctx context.Context, tipperID int) (Result, error) {
	dates, err := t.repo.RecentSentDates(ctx, tipperID, t.window)
	if err != nil {
		return Result{}, err
	}

	res := Compute(dates)
	if err := t.repo.SaveRecord(ctx, tipperID, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// ForCreator computes the streak of days on which the creator received tips.
// The result feeds the creator's stats row; no separate cache row is kept.
func (t *tracker) ForCreator(ctx context.Context, creatorID int) (Result, error) {
	dates, err := t.repo.RecentReceivedDates(ctx, creatorID, t.window)
	if err != nil {
		return Result{}, err
	}
	return Compute(dates), nil
}
