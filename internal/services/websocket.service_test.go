package services

import (
	"context"
	"testing"
	"time"

	"resmon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*SnapshotHub, context.CancelFunc) {
	t.Helper()

	hub := NewSnapshotHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(stopped)
	}()

	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub, cancel
}

func receive(t *testing.T, client *ClientConnection) WebSocketMessage {
	t.Helper()
	select {
	case msg, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return WebSocketMessage{}
	}
}

func TestHubLatest(t *testing.T) {
	hub := NewSnapshotHub(zap.NewNop())

	_, ok := hub.Latest()
	assert.False(t, ok)

	hub.Publish(models.MetricsSnapshot{CPUUsage: 10})
	hub.Publish(models.MetricsSnapshot{CPUUsage: 20})

	latest, ok := hub.Latest()
	require.True(t, ok)
	assert.Equal(t, 20.0, latest.CPUUsage)
}

func TestHubSendsLatestOnRegister(t *testing.T) {
	hub, _ := startHub(t)
	hub.Publish(models.MetricsSnapshot{CPUUsage: 42})

	// drain the queued broadcast before the client exists
	require.Eventually(t, func() bool { return len(hub.broadcast) == 0 }, time.Second, 5*time.Millisecond)

	client := &ClientConnection{ID: "a", Send: make(chan WebSocketMessage, 4)}
	require.True(t, hub.Register(client))

	msg := receive(t, client)
	assert.Equal(t, "snapshot", msg.Type)
	snapshot, ok := msg.Data.(models.MetricsSnapshot)
	require.True(t, ok)
	assert.Equal(t, 42.0, snapshot.CPUUsage)
}

func TestHubBroadcastsPublishedSnapshots(t *testing.T) {
	hub, _ := startHub(t)

	client := &ClientConnection{ID: "a", Send: make(chan WebSocketMessage, 4)}
	require.True(t, hub.Register(client))

	hub.Publish(models.MetricsSnapshot{MemoryUsage: 64})

	msg := receive(t, client)
	assert.Equal(t, 64.0, msg.Data.(models.MetricsSnapshot).MemoryUsage)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	hub, cancel := startHub(t)

	client := &ClientConnection{ID: "a", Send: make(chan WebSocketMessage, 1)}
	require.True(t, hub.Register(client))

	cancel()

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("client channel not closed")
	}

	assert.False(t, hub.Register(&ClientConnection{ID: "b", Send: make(chan WebSocketMessage, 1)}))
	hub.Unregister("a")
}
