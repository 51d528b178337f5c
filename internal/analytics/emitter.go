package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sportbeacon/internal/logger"
)

const eventQueue = "analytics:events"

// Emitter publishes fire-and-forget analytics events. Emission failures are
// logged and swallowed: they must never abort the ledger operation that
// produced them.
type Emitter interface {
	Emit(ctx context.Context, event string, payload map[string]interface{})
}

type Event struct {
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload"`
	At      time.Time              `json:"at"`
}

type redisEmitter struct {
	redis *redis.Client
}

func NewRedisEmitter(redisAddr string) Emitter {
	return &redisEmitter{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
	}
}

// NewWithClient is used by tests to inject a mock client.
func NewWithClient(client *redis.Client) Emitter {
	return &redisEmitter{redis: client}
}

func (e *redisEmitter) Emit(ctx context.Context, event string, payload map[string]interface{}) {
	data, err := json.Marshal(Event{
		Name:    event,
		Payload: payload,
		At:      time.Now(),
	})
	if err != nil {
		logger.Errorf("Failed to marshal analytics event %s: %v", event, err)
		return
	}

	if err := e.redis.LPush(ctx, eventQueue, string(data)).Err(); err != nil {
		logger.Errorf("Failed to emit analytics event %s: %v", event, err)
	}
}

// Noop discards every event; handy for tests and for running without Redis.
type Noop struct{}

func (Noop) Emit(ctx context.Context, event string, payload map[string]interface{}) {}
