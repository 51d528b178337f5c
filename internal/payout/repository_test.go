package payout

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupPayoutMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func candidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "amount_cents", "allocated_cents", "completed_at"})
}

func TestAllocate_GreedyOldestFirst(t *testing.T) {
	repo, mock, close := setupPayoutMock(t)
	defer close()

	day1 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, amount_cents, allocated_cents, completed_at FROM tips(.+)FOR UPDATE").
		WithArgs(7).
		WillReturnRows(candidateRows().
			AddRow(1, 3000, 0, day1).
			AddRow(2, 5000, 0, day2))

	// First tip drained fully, second capped at the remainder.
	mock.ExpectExec("UPDATE tips SET allocated_cents").
		WithArgs(1, int64(3000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tips SET allocated_cents").
		WithArgs(2, int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("INSERT INTO payout_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}).AddRow(11, time.Now()))
	mock.ExpectExec("INSERT INTO payout_allocations").
		WithArgs(11, 1, int64(3000), day1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payout_allocations").
		WithArgs(11, 2, int64(1000), day2).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	p := &Request{CreatorID: 7, AmountCents: 4000, Currency: "IDR"}
	require.NoError(t, repo.Allocate(context.Background(), p))

	require.Equal(t, 11, p.ID)
	require.Equal(t, StatusPending, p.Status)
	require.Len(t, p.Allocations, 2)

	var sum int64
	for _, a := range p.Allocations {
		sum += a.AmountCents
	}
	require.Equal(t, p.AmountCents, sum)
	require.Equal(t, 1, p.Allocations[0].TipID)
	require.Equal(t, int64(1000), p.Allocations[1].AmountCents)
}

func TestAllocate_SkipsAlreadyAllocatedBalance(t *testing.T) {
	repo, mock, close := setupPayoutMock(t)
	defer close()

	day1 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	// Tip 1 already has 2000 of 3000 drawn by an earlier payout.
	mock.ExpectQuery("SELECT id, amount_cents, allocated_cents, completed_at FROM tips(.+)FOR UPDATE").
		WithArgs(7).
		WillReturnRows(candidateRows().AddRow(1, 3000, 2000, day1))

	mock.ExpectExec("UPDATE tips SET allocated_cents").
		WithArgs(1, int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("INSERT INTO payout_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}).AddRow(12, time.Now()))
	mock.ExpectExec("INSERT INTO payout_allocations").
		WithArgs(12, 1, int64(1000), day1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p := &Request{CreatorID: 7, AmountCents: 1000, Currency: "IDR"}
	require.NoError(t, repo.Allocate(context.Background(), p))
	require.Equal(t, int64(1000), p.Allocations[0].AmountCents)
}

func TestAllocate_PoolTooSmallRollsBack(t *testing.T) {
	repo, mock, close := setupPayoutMock(t)
	defer close()

	day1 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, amount_cents, allocated_cents, completed_at FROM tips(.+)FOR UPDATE").
		WithArgs(7).
		WillReturnRows(candidateRows().AddRow(1, 3000, 0, day1))

	mock.ExpectExec("UPDATE tips SET allocated_cents").
		WithArgs(1, int64(3000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	p := &Request{CreatorID: 7, AmountCents: 5000, Currency: "IDR"}
	err := repo.Allocate(context.Background(), p)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Empty(t, p.Allocations)
}

func TestFail_ReleasesAllocatedBalance(t *testing.T) {
	repo, mock, close := setupPayoutMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests").
		WithArgs(11, StatusFailed, "bank rejected", StatusPending, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tips").
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ok, err := repo.Fail(context.Background(), 11, "bank rejected")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFail_AlreadyResolved(t *testing.T) {
	repo, mock, close := setupPayoutMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests").
		WithArgs(11, StatusFailed, "late", StatusPending, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := repo.Fail(context.Background(), 11, "late")
	require.NoError(t, err)
	require.False(t, ok)
}
