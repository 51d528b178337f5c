package alerts

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportbeacon/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestHub_BroadcastReachesRegisteredCreator(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{Hub: hub, Send: make(chan []byte, 1), CreatorID: 7}
	hub.Register(client)

	hub.Broadcast(TipAlert{
		TargetCreatorID: 7,
		TipperName:      "Fan_1",
		AmountCents:     500,
		Currency:        "USD",
		Source:          "direct",
	})

	select {
	case data := <-client.Send:
		var alert TipAlert
		require.NoError(t, json.Unmarshal(data, &alert))
		assert.Equal(t, "Fan_1", alert.TipperName)
		assert.Equal(t, int64(500), alert.AmountCents)
	case <-time.After(time.Second):
		t.Fatal("no alert delivered")
	}
}

func TestHub_BroadcastToUnknownCreatorIsDropped(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// No client registered for creator 99; must not block or panic.
	hub.Broadcast(TipAlert{TargetCreatorID: 99, AmountCents: 100})

	time.Sleep(50 * time.Millisecond)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{Hub: hub, Send: make(chan []byte, 1), CreatorID: 3}
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
