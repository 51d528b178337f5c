package analytics

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"sportbeacon/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestEmit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(eventQueue, `.*tip_completed.*`).SetVal(1)

	e := NewWithClient(db)
	e.Emit(ctx, "tip_completed", map[string]interface{}{"tip_id": 1, "amount_cents": 500})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmit_FailureIsSwallowed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(eventQueue, `.*`).SetErr(assert.AnError)

	e := NewWithClient(db)
	// Must not panic or surface the error.
	e.Emit(ctx, "tip_refunded", map[string]interface{}{"tip_id": 2})

	assert.NoError(t, mock.ExpectationsWereMet())
}
