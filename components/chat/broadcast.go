package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types published on the Broadcaster.
const (
	EventMessageSent   = "message.sent"
	EventMessageEdited = "message.edited"
)

// MessageEvent is pushed to subscribers when a message is sent or edited.
type MessageEvent struct {
	Type           string   `json:"type"`
	ConversationID string   `json:"conversationId"`
	Participants   []string `json:"participants"`
	Message        Message  `json:"message"`
}

// Involves reports whether participantID is part of the event.
func (e MessageEvent) Involves(participantID string) bool {
	if participantID == "" {
		return true
	}
	for _, id := range e.Participants {
		if id == participantID {
			return true
		}
	}
	return false
}

// Broadcaster fans message events out to in-process subscribers.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan MessageEvent
	next   int
	closed bool
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan MessageEvent)}
}

// Publish delivers event to every subscriber without blocking; slow
// subscribers miss events.
func (b *Broadcaster) Publish(_ context.Context, event MessageEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel of events and a cancel func.
func (b *Broadcaster) Subscribe() (<-chan MessageEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan MessageEvent, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close ends every subscription. Later subscribers get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Stream forwards events involving participantID to send until ctx ends,
// the subscription closes or send fails.
func (b *Broadcaster) Stream(ctx context.Context, participantID string, send func(MessageEvent) error) error {
	events, cancel := b.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Involves(participantID) {
				continue
			}
			if err := send(event); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams events as JSON. The
// participant query parameter limits the stream to one participant.
func (b *Broadcaster) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// reads only detect the peer going away
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	_ = b.Stream(ctx, r.URL.Query().Get("participant"), func(event MessageEvent) error {
		return conn.WriteJSON(event)
	})
}

// ServeSSE streams events as Server-Sent Events.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	_ = b.Stream(r.Context(), r.URL.Query().Get("participant"), func(event MessageEvent) error {
		if err := WriteSSE(w, event); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}

// WriteSSE writes event as one Server-Sent Events frame.
func WriteSSE(w io.Writer, event MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
