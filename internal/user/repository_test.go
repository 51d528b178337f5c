package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"})
}

func TestCreateUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, name, email, password_hash, role, created_at")).
		WithArgs("Coach", "coach@example.com", "hash", "creator").
		WillReturnRows(userRows().AddRow(1, "Coach", "coach@example.com", "hash", "creator", time.Now()))

	u, err := repo.Create(context.Background(), "Coach", "coach@example.com", "hash", "creator")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.Equal(t, "creator", u.Role)
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery("SELECT id, name, email").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	require.Error(t, err)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("coach@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "coach@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}
