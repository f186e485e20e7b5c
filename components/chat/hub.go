package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// HubOptions configures a Hub.
type HubOptions struct {
	Directory   *MemoryDirectory
	Clock       Clock
	Broadcaster *Broadcaster
	Telemetry   Telemetry
}

// Hub owns one Store per participant and delivers messages between them.
type Hub struct {
	mu          sync.Mutex
	directory   *MemoryDirectory
	clock       Clock
	broadcaster *Broadcaster
	telemetry   Telemetry
	stores      map[string]*Store
}

var _ MessageHook = (*Hub)(nil)

// NewHub builds a hub. A nil directory is seeded with DefaultParticipants.
func NewHub(opts HubOptions) *Hub {
	h := &Hub{
		directory:   opts.Directory,
		clock:       opts.Clock,
		broadcaster: opts.Broadcaster,
		telemetry:   normalizeTelemetry(opts.Telemetry),
		stores:      make(map[string]*Store),
	}
	if h.directory == nil {
		h.directory = NewMemoryDirectory(DefaultParticipants()...)
	}
	if h.clock == nil {
		h.clock = NewMonotonicClock(nil)
	}
	if h.broadcaster == nil {
		h.broadcaster = NewBroadcaster()
	}
	return h
}

// Directory exposes the participant directory.
func (h *Hub) Directory() *MemoryDirectory {
	return h.directory
}

// Broadcaster exposes the event fan-out.
func (h *Hub) Broadcaster() *Broadcaster {
	return h.broadcaster
}

// Store returns the participant's store, creating it on first use.
func (h *Hub) Store(participantID string) (*Store, error) {
	participantID = strings.ToUpper(strings.TrimSpace(participantID))
	self, ok := h.directory.Lookup(participantID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, participantID)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if store, ok := h.stores[self.ID]; ok {
		return store, nil
	}
	store := NewStore(Options{
		Self:      self,
		Directory: h.directory,
		Clock:     h.clock,
		Hook:      h,
		Telemetry: h.telemetry,
	})
	h.stores[self.ID] = store
	return store, nil
}

// MessageSent delivers msg into the recipient's store and publishes it.
func (h *Hub) MessageSent(ctx context.Context, msg Message) error {
	recipient, err := h.Store(msg.RecipientID)
	if err != nil {
		return err
	}
	if err := recipient.Receive(ctx, msg); err != nil {
		return err
	}
	h.broadcaster.Publish(ctx, MessageEvent{
		Type:           EventMessageSent,
		ConversationID: msg.ConversationID,
		Participants:   []string{msg.SenderID, msg.RecipientID},
		Message:        msg,
	})
	return nil
}

// MessageEdited mirrors the edit into the recipient's store and publishes it.
func (h *Hub) MessageEdited(ctx context.Context, msg Message) error {
	recipient, err := h.Store(msg.RecipientID)
	if err != nil {
		return err
	}
	if err := recipient.ApplyEdit(ctx, msg); err != nil {
		return err
	}
	h.broadcaster.Publish(ctx, MessageEvent{
		Type:           EventMessageEdited,
		ConversationID: msg.ConversationID,
		Participants:   []string{msg.SenderID, msg.RecipientID},
		Message:        msg,
	})
	return nil
}

// Close shuts the broadcaster down.
func (h *Hub) Close() {
	h.broadcaster.Close()
}
