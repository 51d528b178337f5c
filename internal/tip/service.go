package tip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sportbeacon/internal/alerts"
	"sportbeacon/internal/analytics"
	"sportbeacon/internal/badge"
	"sportbeacon/internal/logger"
	"sportbeacon/internal/metrics"
	"sportbeacon/internal/payment"
	"sportbeacon/internal/stats"
	"sportbeacon/internal/streak"
	"sportbeacon/internal/user"
)

// Validation errors. None of them leaves a row behind.
var (
	ErrAmountInvalid   = errors.New("tip amount must be positive")
	ErrAmountTooLarge  = errors.New("tip amount exceeds the maximum")
	ErrSelfTip         = errors.New("tipper and creator must differ")
	ErrMissingParty    = errors.New("tipper and creator ids are required")
	ErrCreatorNotFound = errors.New("creator not found")
)

// Refund errors.
var (
	ErrNotRefundable = errors.New("only completed tips can be refunded")
	ErrTipAllocated  = errors.New("tip is allocated to a payout and cannot be refunded")
)

// Notifier queues the tip-received notification for the creator. Failures
// are non-fatal.
type Notifier interface {
	SendTipReceived(ctx context.Context, creatorID int, tipperName string, amountCents int64) error
}

type Service interface {
	// Submit drives a tip through validation, a pending write, the payment
	// attempt, and the downstream pipeline. A repeated idempotencyKey from
	// the same tipper returns the original tip without charging again.
	Submit(ctx context.Context, tipperID int, req SubmitTipRequest, idempotencyKey string) (*Tip, error)
	// Refund reverses a completed, unallocated tip and re-applies stats.
	Refund(ctx context.Context, tipID int, reason string) (*Tip, error)
	GetByID(ctx context.Context, id int) (*Tip, error)
	ListByCreator(ctx context.Context, creatorID, limit int) ([]Tip, error)
	ListByTipper(ctx context.Context, tipperID, limit int) ([]Tip, error)
}

type service struct {
	repo           Repository
	users          user.Service
	gateway        payment.Gateway
	stats          stats.Service
	tracker        streak.Tracker
	badges         badge.Evaluator
	emitter        analytics.Emitter
	broadcaster    alerts.Broadcaster
	notifier       Notifier
	maxTipCents    int64
	paymentTimeout time.Duration
	now            func() time.Time
}

type ServiceDeps struct {
	Repo        Repository
	Users       user.Service
	Gateway     payment.Gateway
	Stats       stats.Service
	Tracker     streak.Tracker
	Badges      badge.Evaluator
	Emitter     analytics.Emitter
	Broadcaster alerts.Broadcaster
	Notifier    Notifier
}

func NewService(deps ServiceDeps, maxTipCents int64, paymentTimeout time.Duration) Service {
	if paymentTimeout <= 0 {
		paymentTimeout = 15 * time.Second
	}
	return &service{
		repo:           deps.Repo,
		users:          deps.Users,
		gateway:        deps.Gateway,
		stats:          deps.Stats,
		tracker:        deps.Tracker,
		badges:         deps.Badges,
		emitter:        deps.Emitter,
		broadcaster:    deps.Broadcaster,
		notifier:       deps.Notifier,
		maxTipCents:    maxTipCents,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
	}
}

func (s *service) Submit(ctx context.Context, tipperID int, req SubmitTipRequest, idempotencyKey string) (*Tip, error) {
	if err := s.validate(tipperID, req); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, tipperID, idempotencyKey)
		if err == nil {
			logger.Info("idempotent tip replay", "tip_id", existing.ID, "tipper_id", tipperID)
			return existing, nil
		}
		if !errors.Is(err, ErrTipNotFound) {
			return nil, err
		}
	}

	creator, err := s.users.GetByID(ctx, req.CreatorID)
	if err != nil {
		return nil, ErrCreatorNotFound
	}

	t := &Tip{
		TipperID:    tipperID,
		CreatorID:   creator.ID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Message:     req.Message,
		Status:      StatusPending,
		Source:      req.Source,
	}
	if t.Currency == "" {
		t.Currency = "IDR"
	}
	if t.Source == "" {
		t.Source = SourceDirect
	}
	if idempotencyKey != "" {
		t.IdempotencyKey = &idempotencyKey
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tip: %w", err)
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	result, err := s.gateway.Charge(chargeCtx, payment.ChargeRequest{
		OrderID:     fmt.Sprintf("tip-%d-%s", t.ID, uuid.NewString()),
		AmountCents: t.AmountCents,
		Currency:    t.Currency,
		Description: fmt.Sprintf("Tip to creator %d", t.CreatorID),
	})
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, t.ID, err.Error()); markErr != nil {
			logger.Errorf("Failed to mark tip %d failed: %v", t.ID, markErr)
		}
		t.Status = StatusFailed
		reason := err.Error()
		t.FailureReason = &reason
		metrics.RecordTip(StatusFailed, t.Source)
		return t, err
	}

	completedAt := s.now()
	if err := s.repo.MarkCompleted(ctx, t.ID, result.Reference, completedAt); err != nil {
		return nil, fmt.Errorf("mark tip completed: %w", err)
	}
	t.Status = StatusCompleted
	t.PaymentRef = &result.Reference
	t.CompletedAt = &completedAt

	metrics.RecordTip(StatusCompleted, t.Source)
	metrics.RecordTipAmount(t.AmountCents)

	s.runDownstream(ctx, t)

	return t, nil
}

func (s *service) validate(tipperID int, req SubmitTipRequest) error {
	// An absent id is a malformed request, not a lookup miss; the creator's
	// existence is checked against the account store later.
	if tipperID <= 0 || req.CreatorID <= 0 {
		return ErrMissingParty
	}
	if tipperID == req.CreatorID {
		return ErrSelfTip
	}
	if req.AmountCents <= 0 {
		return ErrAmountInvalid
	}
	if req.AmountCents > s.maxTipCents {
		return ErrAmountTooLarge
	}
	return nil
}

// runDownstream applies stats, streaks, tier and badges after a completed
// payment. The tip stays completed whatever happens here: each step failure
// is logged and counted, never propagated.
func (s *service) runDownstream(ctx context.Context, t *Tip) {
	creatorStats, err := s.stats.ApplyTip(ctx, t.CreatorID, t.AmountCents)
	if err != nil {
		s.warn("stats", t.ID, err)
	}

	if res, err := s.tracker.ForCreator(ctx, t.CreatorID); err != nil {
		s.warn("creator_streak", t.ID, err)
	} else if err := s.stats.SetCurrentStreak(ctx, t.CreatorID, res.Current); err != nil {
		s.warn("creator_streak", t.ID, err)
	}

	if _, err := s.tracker.ForTipper(ctx, t.TipperID); err != nil {
		s.warn("tipper_streak", t.ID, err)
	}

	s.evaluateBadges(ctx, t, creatorStats)

	s.emitter.Emit(ctx, "tip_completed", map[string]interface{}{
		"tip_id":       t.ID,
		"tipper_id":    t.TipperID,
		"creator_id":   t.CreatorID,
		"amount_cents": t.AmountCents,
		"source":       t.Source,
	})

	tipperName := fmt.Sprintf("user %d", t.TipperID)
	if tipper, err := s.users.GetByID(ctx, t.TipperID); err == nil {
		tipperName = tipper.Name
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(alerts.TipAlert{
			TargetCreatorID: t.CreatorID,
			TipperName:      tipperName,
			AmountCents:     t.AmountCents,
			Currency:        t.Currency,
			Message:         t.Message,
			Source:          t.Source,
		})
	}

	if s.notifier != nil {
		if err := s.notifier.SendTipReceived(ctx, t.CreatorID, tipperName, t.AmountCents); err != nil {
			s.warn("notify", t.ID, err)
		}
	}
}

func (s *service) evaluateBadges(ctx context.Context, t *Tip, creatorStats *stats.CreatorStats) {
	sentCount, err := s.repo.CountCompletedByTipper(ctx, t.TipperID)
	if err != nil {
		s.warn("badges", t.ID, err)
	} else {
		_, err = s.badges.Evaluate(ctx, t.TipperID, badge.ActivityTipSent, badge.ActivityData{
			TipCount: sentCount,
		})
		if err != nil {
			s.warn("badges", t.ID, err)
		}
	}

	if creatorStats == nil {
		return
	}
	awarded, err := s.badges.Evaluate(ctx, t.CreatorID, badge.ActivityTipReceived, badge.ActivityData{
		TipCount:           creatorStats.TipCount,
		CumulativeTipCents: creatorStats.TotalReceivedCents,
	})
	if err != nil {
		s.warn("badges", t.ID, err)
		return
	}
	if badge.TierRecheckRequested(awarded) {
		if err := s.stats.RecheckTier(ctx, t.CreatorID); err != nil {
			s.warn("tier_recheck", t.ID, err)
		}
	}
}

func (s *service) warn(step string, tipID int, err error) {
	metrics.RecordDownstreamFailure(step)
	logger.Error("tip downstream step failed", "step", step, "tip_id", tipID, "error", err)
}

func (s *service) Refund(ctx context.Context, tipID int, reason string) (*Tip, error) {
	t, err := s.repo.FindByID(ctx, tipID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusCompleted {
		return nil, ErrNotRefundable
	}
	if t.AllocatedCents > 0 {
		return nil, ErrTipAllocated
	}

	if t.PaymentRef != nil {
		if err := s.gateway.Refund(ctx, *t.PaymentRef); err != nil {
			return nil, err
		}
	}

	refundedAt := s.now()
	ok, err := s.repo.MarkRefunded(ctx, tipID, reason, refundedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A payout allocation or second refund won the race.
		return nil, ErrTipAllocated
	}
	t.Status = StatusRefunded
	t.RefundReason = &reason
	t.RefundedAt = &refundedAt

	if _, err := s.stats.ApplyRefund(ctx, t.CreatorID, t.AmountCents); err != nil {
		return nil, err
	}

	metrics.RecordRefund()
	s.emitter.Emit(ctx, "tip_refunded", map[string]interface{}{
		"tip_id":       t.ID,
		"creator_id":   t.CreatorID,
		"amount_cents": t.AmountCents,
		"reason":       reason,
	})

	return t, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Tip, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByCreator(ctx context.Context, creatorID, limit int) ([]Tip, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByCreator(ctx, creatorID, limit)
}

func (s *service) ListByTipper(ctx context.Context, tipperID, limit int) ([]Tip, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByTipper(ctx, tipperID, limit)
}
