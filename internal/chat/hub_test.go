package chat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionReader struct {
	ReadFunc func(ctx context.Context, sessionID string) (*services.SessionRecord, error)
}

func (s *stubSessionReader) Read(ctx context.Context, sessionID string) (*services.SessionRecord, error) {
	return s.ReadFunc(ctx, sessionID)
}

type stubMessagePoster struct {
	PostMessageFunc func(ctx context.Context, userID, body string) (*models.Message, error)
}

func (s *stubMessagePoster) PostMessage(ctx context.Context, userID, body string) (*models.Message, error) {
	return s.PostMessageFunc(ctx, userID, body)
}

func newTestHub() *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := &stubSessionReader{
		ReadFunc: func(ctx context.Context, sessionID string) (*services.SessionRecord, error) {
			return nil, models.ErrNotFound
		},
	}
	forum := &stubMessagePoster{
		PostMessageFunc: func(ctx context.Context, userID, body string) (*models.Message, error) {
			return &models.Message{ID: "m1", Body: body}, nil
		},
	}
	return NewHub(sessions, forum, 30*time.Second, logger)
}

func recvFrame(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case frame := <-ch:
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast frame")
		return nil
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := NewClient(hub, nil, "sess-a")
	b := NewClient(hub, nil, "sess-b")
	hub.register <- a
	hub.register <- b

	created := time.Now().UTC().Truncate(time.Second)
	hub.BroadcastMessage(&models.Message{
		ID: "m1", Body: "hello", DisplayName: "Alice", CreatedAt: created,
	})

	for _, c := range []*Client{a, b} {
		var frame messageFrame
		require.NoError(t, json.Unmarshal(recvFrame(t, c.send), &frame))
		assert.Equal(t, "message", frame.Type)
		assert.Equal(t, "hello", frame.Body)
		assert.Equal(t, "Alice", frame.DisplayName)
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := NewClient(hub, nil, "sess-a")
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.send:
		assert.False(t, open, "send channel should be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel still open after unregister")
	}
}

func TestHub_SlowConsumerIsDropped(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := NewClient(hub, nil, "sess-a")
	c.send = make(chan []byte) // unbuffered and never drained
	hub.register <- c

	hub.BroadcastMessage(&models.Message{ID: "m1", Body: "x"})

	select {
	case _, open := <-c.send:
		assert.False(t, open, "slow client should have been dropped")
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := NewClient(hub, nil, "sess-a")
	hub.register <- c
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop on context cancellation")
	}
	_, open := <-c.send
	assert.False(t, open)
}
