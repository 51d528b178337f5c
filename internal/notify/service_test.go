package notify

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"sportbeacon/internal/logger"
	"sportbeacon/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type stubUsers struct {
	known map[int]*user.User
}

func (s *stubUsers) Register(ctx context.Context, req user.RegisterRequest) (*user.User, string, string, error) {
	return nil, "", "", nil
}

func (s *stubUsers) Login(ctx context.Context, req user.LoginRequest) (*user.User, string, string, error) {
	return nil, "", "", nil
}

func (s *stubUsers) GetByID(ctx context.Context, userID int) (*user.User, error) {
	u, ok := s.known[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUsers) RefreshToken(ctx context.Context, refreshToken string) (string, *user.User, error) {
	return "", nil, nil
}

func newTestService(rdb *redis.Client) *Service {
	users := &stubUsers{known: map[int]*user.User{
		2: {ID: 2, Name: "Bob", Email: "bob@example.com"},
	}}
	svc := NewWithClient(rdb, users)
	svc.from = "noreply@sportbeacon.app"
	svc.fromName = "SportBeacon Team"
	svc.smtpHost = "smtp.test.com"
	svc.smtpPort = "587"
	return svc
}

func TestSendTipReceived(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)

	err := svc.SendTipReceived(ctx, 2, "Alice", 5000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendBadgeUnlocked(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)

	err := svc.SendBadgeUnlocked(ctx, 2, "Iron Streak", "legendary")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendPayoutRequested(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)

	err := svc.SendPayoutRequested(ctx, 2, 250000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendUnknownUser(t *testing.T) {
	db, _ := redismock.NewClientMock()
	ctx := context.Background()

	svc := newTestService(db)

	err := svc.SendTipReceived(ctx, 99, "Alice", 5000)
	assert.Error(t, err)
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(queueKey).SetVal(5)

	svc := newTestService(db)

	length := svc.QueueLength(ctx)
	assert.Equal(t, int64(5), length)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	svc := newTestService(db)

	err := svc.SendTipReceived(ctx, 2, "Alice", 5000)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
