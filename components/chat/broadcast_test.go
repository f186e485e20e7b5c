package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterSubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(context.Background(), MessageEvent{Type: EventMessageSent, ConversationID: "conv_A_B"})
	select {
	case evt := <-ch:
		if evt.ConversationID != "conv_A_B" {
			t.Fatalf("unexpected event %+v", evt)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcasterCloseEndsSubscriptions(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	b.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	cancel()

	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("expected closed channel after Close")
	}
}

func TestBroadcasterStreamFiltersParticipant(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan MessageEvent, 2)
	done := make(chan error, 1)
	go func() {
		done <- b.Stream(ctx, "TV2", func(evt MessageEvent) error {
			got <- evt
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs) == 1
	}, time.Second, 5*time.Millisecond)

	b.Publish(ctx, MessageEvent{ConversationID: "skip", Participants: []string{"TV1", "TV3"}})
	b.Publish(ctx, MessageEvent{ConversationID: "keep", Participants: []string{"TV1", "TV2"}})

	select {
	case evt := <-got:
		assert.Equal(t, "keep", evt.ConversationID)
	case <-time.After(time.Second):
		t.Fatalf("expected filtered event")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestBroadcasterStreamReturnsSendError(t *testing.T) {
	b := NewBroadcaster()
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- b.Stream(context.Background(), "", func(MessageEvent) error { return boom })
	}()
	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs) == 1
	}, time.Second, 5*time.Millisecond)
	b.Publish(context.Background(), MessageEvent{})
	assert.ErrorIs(t, <-done, boom)
}

func TestBroadcasterServeSSE(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/chat/events?participant=TV2", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeSSE(rec, req)
		close(done)
	}()
	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs) == 1
	}, time.Second, 5*time.Millisecond)

	b.Publish(ctx, MessageEvent{Type: EventMessageSent, ConversationID: "conv_TV1_TV2", Participants: []string{"TV1", "TV2"}})
	// closing the broadcaster ends the stream after the queued event is written
	b.Close()
	<-done
	cancel()

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: message.sent\ndata: {"), body)
	assert.Contains(t, body, `"conversationId":"conv_TV1_TV2"`)
}

func TestBroadcasterServeWebSocket(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(b.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?participant=TV2"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs) == 1
	}, time.Second, 5*time.Millisecond)

	b.Publish(context.Background(), MessageEvent{Type: EventMessageSent, ConversationID: "conv_TV1_TV2", Participants: []string{"TV1", "TV2"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var evt MessageEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "conv_TV1_TV2", evt.ConversationID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs) == 0
	}, time.Second, 5*time.Millisecond)
}
