package payout

import (
	"context"
	"errors"
	"time"

	"sportbeacon/internal/analytics"
	"sportbeacon/internal/logger"
	"sportbeacon/internal/metrics"
	"sportbeacon/internal/stats"
)

var (
	ErrBelowMinimum        = errors.New("payout amount is below the minimum")
	ErrInsufficientBalance = errors.New("payout amount exceeds the available balance")
	ErrAlreadyResolved     = errors.New("payout already resolved")
	// ErrAllocationMismatch is an internal invariant violation: the
	// breakdown did not sum to the requested amount. Never retried.
	ErrAllocationMismatch = errors.New("payout allocation sum mismatch")
)

const topTipperLimit = 5

// Notifier queues the payout lifecycle notifications. Failures are
// non-fatal.
type Notifier interface {
	SendPayoutRequested(ctx context.Context, creatorID int, amountCents int64) error
}

type Service interface {
	// Request withdraws amountCents against the creator's completed tips.
	// Preconditions (minimum, free balance) are checked before any write.
	Request(ctx context.Context, creatorID int, req RequestPayoutRequest) (*Request, error)
	// Resolve is the admin settlement step: success consumes the allocated
	// balances for good, failure releases them.
	Resolve(ctx context.Context, payoutID int, success bool, reason string) (*Request, error)
	GetByID(ctx context.Context, id int) (*Request, error)
	ListByCreator(ctx context.Context, creatorID int) ([]Request, error)
	GetSettings(ctx context.Context, creatorID int) (*Settings, error)
	UpdateSettings(ctx context.Context, creatorID int, req UpdateSettingsRequest) (*Settings, error)
}

type service struct {
	repo           Repository
	stats          stats.Service
	emitter        analytics.Emitter
	notifier       Notifier
	minPayoutCents int64
}

func NewService(repo Repository, statsSvc stats.Service, emitter analytics.Emitter, notifier Notifier, minPayoutCents int64) Service {
	return &service{
		repo:           repo,
		stats:          statsSvc,
		emitter:        emitter,
		notifier:       notifier,
		minPayoutCents: minPayoutCents,
	}
}

func (s *service) Request(ctx context.Context, creatorID int, req RequestPayoutRequest) (*Request, error) {
	if req.AmountCents < s.minPayoutCents {
		return nil, ErrBelowMinimum
	}

	cur, err := s.stats.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, stats.ErrStatsNotFound) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	requested, err := s.repo.RequestedCents(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if req.AmountCents > cur.TotalEarningsCents-requested {
		return nil, ErrInsufficientBalance
	}

	snapshot, err := s.snapshot(ctx, cur)
	if err != nil {
		return nil, err
	}

	p := &Request{
		CreatorID:   creatorID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Snapshot:    snapshot,
	}
	if p.Currency == "" {
		p.Currency = "IDR"
	}

	if err := s.repo.Allocate(ctx, p); err != nil {
		return nil, err
	}

	var sum int64
	for _, a := range p.Allocations {
		sum += a.AmountCents
	}
	if sum != p.AmountCents {
		logger.Errorf("Payout %d allocation sum %d != requested %d", p.ID, sum, p.AmountCents)
		return nil, ErrAllocationMismatch
	}

	metrics.RecordPayout(StatusPending)
	s.emitter.Emit(ctx, "payout_requested", map[string]interface{}{
		"payout_id":    p.ID,
		"creator_id":   creatorID,
		"amount_cents": p.AmountCents,
	})

	if s.notifier != nil {
		if err := s.notifier.SendPayoutRequested(ctx, creatorID, p.AmountCents); err != nil {
			metrics.RecordDownstreamFailure("notify")
			logger.Error("payout notification failed", "payout_id", p.ID, "error", err)
		}
	}

	return p, nil
}

// snapshot freezes the creator's numbers at request time. The engagement
// score is a deterministic estimate: the active-streak share of the window.
func (s *service) snapshot(ctx context.Context, cur *stats.CreatorStats) (PerformanceSnapshot, error) {
	tippers, err := s.repo.TopTippers(ctx, cur.CreatorID, topTipperLimit)
	if err != nil {
		return PerformanceSnapshot{}, err
	}

	score := float64(cur.CurrentStreak) / 30.0
	if score > 1 {
		score = 1
	}

	return PerformanceSnapshot{
		TipCount:        cur.TipCount,
		AverageTipCents: cur.AverageTipCents,
		TopTippers:      tippers,
		EngagementScore: score,
	}, nil
}

func (s *service) Resolve(ctx context.Context, payoutID int, success bool, reason string) (*Request, error) {
	var ok bool
	var err error
	if success {
		ok, err = s.repo.Complete(ctx, payoutID)
	} else {
		ok, err = s.repo.Fail(ctx, payoutID, reason)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the payout is unknown or it already resolved.
		p, err := s.repo.FindByID(ctx, payoutID)
		if err != nil {
			return nil, err
		}
		return p, ErrAlreadyResolved
	}

	p, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	metrics.RecordPayout(p.Status)
	s.emitter.Emit(ctx, "payout_resolved", map[string]interface{}{
		"payout_id": p.ID,
		"status":    p.Status,
	})
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Request, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByCreator(ctx context.Context, creatorID int) ([]Request, error) {
	return s.repo.ListByCreator(ctx, creatorID)
}

func (s *service) GetSettings(ctx context.Context, creatorID int) (*Settings, error) {
	return s.repo.GetSettings(ctx, creatorID)
}

func (s *service) UpdateSettings(ctx context.Context, creatorID int, req UpdateSettingsRequest) (*Settings, error) {
	settings := &Settings{
		CreatorID:     creatorID,
		Method:        req.Method,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		UpdatedAt:     time.Now(),
	}
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
