package user

import (
	"context"
	"errors"
	"testing"

	"sportbeacon/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestRegister_NewCreator(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "secret")
	ctx := context.Background()

	repo.On("EmailExists", ctx, "coach@example.com").Return(false, nil)
	repo.On("Create", ctx, "Coach", "coach@example.com", mock.AnythingOfType("string"), auth.RoleCreator).
		Return(&User{ID: 1, Name: "Coach", Email: "coach@example.com", Role: auth.RoleCreator}, nil)

	user, access, refresh, err := svc.Register(ctx, RegisterRequest{
		Name:     "Coach",
		Email:    "coach@example.com",
		Password: "password123",
		Creator:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, auth.RoleCreator, user.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "secret")
	ctx := context.Background()

	repo.On("EmailExists", ctx, "taken@example.com").Return(true, nil)

	_, _, _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.Equal(t, ErrEmailExists, err)
	repo.AssertNotCalled(t, "Create")
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "secret")
	ctx := context.Background()

	hash, _ := auth.HashPassword("correct-password")
	repo.On("FindByEmail", ctx, "fan@example.com").
		Return(&User{ID: 2, Email: "fan@example.com", PasswordHash: hash, Role: auth.RoleFan}, nil)

	_, _, _, err := svc.Login(ctx, LoginRequest{Email: "fan@example.com", Password: "wrong"})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "secret")
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, errors.New("sql: no rows"))

	_, _, _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.Equal(t, ErrInvalidCredentials, err)
}
