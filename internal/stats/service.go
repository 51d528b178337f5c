package stats

import (
	"context"
	"errors"
	"math"
	"time"

	"sportbeacon/internal/logger"
	"sportbeacon/internal/metrics"
	"sportbeacon/internal/tier"
)

// ErrConflict means the versioned read-modify-write lost to concurrent
// writers more times than the retry bound allows. Transient: the caller
// should retry the whole tip or refund.
var ErrConflict = errors.New("creator stats conflict: retries exhausted")

type Service interface {
	ApplyTip(ctx context.Context, creatorID int, amountCents int64) (*CreatorStats, error)
	ApplyRefund(ctx context.Context, creatorID int, amountCents int64) (*CreatorStats, error)
	// RecheckTier re-derives the tier from current earnings. Badge rewards
	// with a tier-recheck flag call this; it never invents earnings.
	RecheckTier(ctx context.Context, creatorID int) error
	SetCurrentStreak(ctx context.Context, creatorID, currentStreak int) error
	Get(ctx context.Context, creatorID int) (*CreatorStats, error)
	Summary(ctx context.Context, creatorID int) (*EarningsSummary, error)
}

type service struct {
	repo       Repository
	feeRate    float64
	maxRetries int
	now        func() time.Time
}

func NewService(repo Repository, feeRate float64, maxRetries int) Service {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &service{
		repo:       repo,
		feeRate:    feeRate,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (s *service) ApplyTip(ctx context.Context, creatorID int, amountCents int64) (*CreatorStats, error) {
	return s.mutate(ctx, creatorID, func(cur *CreatorStats) {
		now := s.now()
		cur.TotalReceivedCents += amountCents
		cur.TipCount++
		cur.AverageTipCents = cur.TotalReceivedCents / int64(cur.TipCount)
		if amountCents > cur.HighestTipCents {
			cur.HighestTipCents = amountCents
		}
		cur.LastTipDate = &now
	})
}

// ApplyRefund reverses a completed tip. The tip count floors at zero and
// the average is recomputed from the decremented count. The highest tip is
// a high-water mark and is not revised downward.
func (s *service) ApplyRefund(ctx context.Context, creatorID int, amountCents int64) (*CreatorStats, error) {
	return s.mutate(ctx, creatorID, func(cur *CreatorStats) {
		cur.TotalReceivedCents -= amountCents
		if cur.TotalReceivedCents < 0 {
			cur.TotalReceivedCents = 0
		}
		if cur.TipCount > 0 {
			cur.TipCount--
		}
		if cur.TipCount > 0 {
			cur.AverageTipCents = cur.TotalReceivedCents / int64(cur.TipCount)
		} else {
			cur.AverageTipCents = 0
		}
	})
}

// mutate runs one bounded-retry read-modify-write unit. Earnings are always
// recomputed from the received total, so the conservation invariant
// (earnings == received minus the platform fee) holds after every commit.
func (s *service) mutate(ctx context.Context, creatorID int, apply func(*CreatorStats)) (*CreatorStats, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		cur, err := s.repo.Get(ctx, creatorID)
		exists := true
		if err != nil {
			if !errors.Is(err, ErrStatsNotFound) {
				return nil, err
			}
			exists = false
			cur = &CreatorStats{CreatorID: creatorID, Tier: string(tier.Bronze)}
		}

		apply(cur)
		cur.TotalEarningsCents = cur.TotalReceivedCents - s.fee(cur.TotalReceivedCents)
		upgraded := s.applyTier(cur)

		var ok bool
		if exists {
			ok, err = s.repo.UpdateVersioned(ctx, cur, cur.Version)
		} else {
			ok, err = s.repo.InsertIfAbsent(ctx, cur)
		}
		if err != nil {
			return nil, err
		}
		if ok {
			if upgraded {
				metrics.RecordTierUpgrade(cur.Tier)
				logger.Info("creator tier upgraded", "creator_id", creatorID, "tier", cur.Tier)
			}
			return cur, nil
		}

		metrics.RecordStatsConflictRetry()
	}

	return nil, ErrConflict
}

// applyTier re-derives the tier from earnings and reports an upgrade.
// Downgrades are never applied: a refund that drops earnings below a
// threshold leaves the stored tier untouched (policy, not oversight).
func (s *service) applyTier(cur *CreatorStats) bool {
	derived := tier.Derive(cur.TotalEarningsCents)
	if tier.IsUpgrade(tier.Tier(cur.Tier), derived) {
		now := s.now()
		cur.Tier = string(derived)
		cur.TierUpgradedAt = &now
		return true
	}
	return false
}

func (s *service) fee(cents int64) int64 {
	return int64(math.Round(float64(cents) * s.feeRate))
}

func (s *service) RecheckTier(ctx context.Context, creatorID int) error {
	_, err := s.mutate(ctx, creatorID, func(cur *CreatorStats) {})
	return err
}

func (s *service) SetCurrentStreak(ctx context.Context, creatorID, currentStreak int) error {
	return s.repo.SetCurrentStreak(ctx, creatorID, currentStreak)
}

func (s *service) Get(ctx context.Context, creatorID int) (*CreatorStats, error) {
	return s.repo.Get(ctx, creatorID)
}

func (s *service) Summary(ctx context.Context, creatorID int) (*EarningsSummary, error) {
	cur, err := s.repo.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			return &EarningsSummary{Tier: string(tier.Bronze)}, nil
		}
		return nil, err
	}

	now := s.now()
	week, err := s.repo.ReceivedSince(ctx, creatorID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	month, err := s.repo.ReceivedSince(ctx, creatorID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{
		TotalEarningsCents: cur.TotalEarningsCents,
		TotalReceivedCents: cur.TotalReceivedCents,
		ThisWeekCents:      week,
		ThisMonthCents:     month,
		TipCount:           cur.TipCount,
		AverageTipCents:    cur.AverageTipCents,
		HighestTipCents:    cur.HighestTipCents,
		Tier:               cur.Tier,
	}, nil
}
