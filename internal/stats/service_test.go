package stats

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"sportbeacon/internal/logger"
	"sportbeacon/internal/tier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// fakeRepo is an in-memory Repository with an injectable conflict count to
// exercise the retry loop.
type fakeRepo struct {
	mu        sync.Mutex
	rows      map[int]*CreatorStats
	conflicts int
	weekSum   int64
	monthSum  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int]*CreatorStats)}
}

func (f *fakeRepo) Get(ctx context.Context, creatorID int) (*CreatorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[creatorID]
	if !ok {
		return nil, ErrStatsNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) InsertIfAbsent(ctx context.Context, s *CreatorStats) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return false, nil
	}
	if _, ok := f.rows[s.CreatorID]; ok {
		return false, nil
	}
	cp := *s
	cp.Version = 1
	f.rows[s.CreatorID] = &cp
	return true, nil
}

func (f *fakeRepo) UpdateVersioned(ctx context.Context, s *CreatorStats, expectedVersion int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return false, nil
	}
	cur, ok := f.rows[s.CreatorID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	cp := *s
	cp.Version = expectedVersion + 1
	f.rows[s.CreatorID] = &cp
	return true, nil
}

func (f *fakeRepo) SetCurrentStreak(ctx context.Context, creatorID, currentStreak int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.rows[creatorID]; ok {
		s.CurrentStreak = currentStreak
		s.Version++
	}
	return nil
}

func (f *fakeRepo) ReceivedSince(ctx context.Context, creatorID int, since time.Time) (int64, error) {
	if time.Since(since) < 8*24*time.Hour {
		return f.weekSum, nil
	}
	return f.monthSum, nil
}

func TestApplyTip_FirstTipCreatesRow(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.10, 5)
	ctx := context.Background()

	s, err := svc.ApplyTip(ctx, 1, 10000)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), s.TotalReceivedCents)
	assert.Equal(t, int64(9000), s.TotalEarningsCents)
	assert.Equal(t, 1, s.TipCount)
	assert.Equal(t, int64(10000), s.AverageTipCents)
	assert.Equal(t, int64(10000), s.HighestTipCents)
	assert.NotNil(t, s.LastTipDate)
	assert.Equal(t, string(tier.Bronze), s.Tier)
}

func TestConservation_OverTipAndRefundSequence(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.10, 5)
	ctx := context.Background()

	type op struct {
		refund bool
		amount int64
	}
	ops := []op{
		{false, 10000},
		{false, 2500},
		{false, 500},
		{true, 2500},
		{false, 7500},
		{true, 500},
	}

	var outstanding int64
	for _, o := range ops {
		var s *CreatorStats
		var err error
		if o.refund {
			s, err = svc.ApplyRefund(ctx, 1, o.amount)
			outstanding -= o.amount
		} else {
			s, err = svc.ApplyTip(ctx, 1, o.amount)
			outstanding += o.amount
		}
		require.NoError(t, err)

		wantEarnings := outstanding - int64(math.Round(float64(outstanding)*0.10))
		assert.Equal(t, outstanding, s.TotalReceivedCents)
		assert.Equal(t, wantEarnings, s.TotalEarningsCents)
	}
}

func TestApplyRefund_SingleTipBackToZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.10, 5)
	ctx := context.Background()

	s, err := svc.ApplyTip(ctx, 1, 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), s.TotalEarningsCents)

	s, err = svc.ApplyRefund(ctx, 1, 10000)
	require.NoError(t, err)

	assert.Equal(t, int64(0), s.TotalEarningsCents)
	assert.Equal(t, int64(0), s.TotalReceivedCents)
	assert.Equal(t, 0, s.TipCount)
	assert.Equal(t, int64(0), s.AverageTipCents)
}

func TestApplyRefund_CountFloorsAtZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.10, 5)
	ctx := context.Background()

	// A refund against a creator with no recorded tips must not drive the
	// count negative.
	s, err := svc.ApplyRefund(ctx, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TipCount)
	assert.Equal(t, int64(0), s.TotalReceivedCents)
}

func TestMutate_RetriesThenSucceeds(t *testing.T) {
	repo := newFakeRepo()
	repo.conflicts = 3
	svc := NewService(repo, 0.10, 5)

	s, err := svc.ApplyTip(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), s.TotalReceivedCents)
}

func TestMutate_RetriesExhausted(t *testing.T) {
	repo := newFakeRepo()
	repo.conflicts = 5
	svc := NewService(repo, 0.10, 5)

	_, err := svc.ApplyTip(context.Background(), 1, 1000)
	assert.Equal(t, ErrConflict, err)
}

func TestTierUpgrade_StampsTimestamp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.0, 5)
	ctx := context.Background()

	// 999.99 in earnings stays bronze.
	s, err := svc.ApplyTip(ctx, 1, 99999)
	require.NoError(t, err)
	assert.Equal(t, string(tier.Bronze), s.Tier)
	assert.Nil(t, s.TierUpgradedAt)

	// One more cent crosses the inclusive silver bound.
	s, err = svc.ApplyTip(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, string(tier.Silver), s.Tier)
	assert.NotNil(t, s.TierUpgradedAt)
}

func TestRefund_NeverDowngradesTier(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.0, 5)
	ctx := context.Background()

	s, err := svc.ApplyTip(ctx, 1, 100000)
	require.NoError(t, err)
	require.Equal(t, string(tier.Silver), s.Tier)

	s, err = svc.ApplyRefund(ctx, 1, 50000)
	require.NoError(t, err)
	assert.Equal(t, string(tier.Silver), s.Tier)
}

func TestSummary_NoStatsYet(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 0.10, 5)

	sum, err := svc.Summary(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.TotalEarningsCents)
	assert.Equal(t, string(tier.Bronze), sum.Tier)
}

func TestSummary_WindowedTotals(t *testing.T) {
	repo := newFakeRepo()
	repo.weekSum = 3000
	repo.monthSum = 12000
	svc := NewService(repo, 0.10, 5)
	ctx := context.Background()

	_, err := svc.ApplyTip(ctx, 1, 12000)
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum.ThisWeekCents)
	assert.Equal(t, int64(12000), sum.ThisMonthCents)
	assert.Equal(t, 1, sum.TipCount)
}
