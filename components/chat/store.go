package chat

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Options configures a participant's Store.
type Options struct {
	Self      Participant
	Directory Directory
	Clock     Clock
	Hook      MessageHook
	Telemetry Telemetry
	NewID     func() string
}

// Store keeps one participant's conversations and messages.
type Store struct {
	mu            sync.RWMutex
	self          Participant
	directory     Directory
	clock         Clock
	hook          MessageHook
	telemetry     Telemetry
	newID         func() string
	conversations map[string]Conversation
	messages      map[string][]Message
	active        string
}

// NewStore builds an empty store for opts.Self.
func NewStore(opts Options) *Store {
	s := &Store{
		self:          opts.Self,
		directory:     opts.Directory,
		clock:         opts.Clock,
		hook:          opts.Hook,
		telemetry:     normalizeTelemetry(opts.Telemetry),
		newID:         opts.NewID,
		conversations: make(map[string]Conversation),
		messages:      make(map[string][]Message),
	}
	s.self.ID = strings.ToUpper(strings.TrimSpace(s.self.ID))
	if s.directory == nil {
		s.directory = NewMemoryDirectory()
	}
	if s.clock == nil {
		s.clock = NewMonotonicClock(nil)
	}
	if s.hook == nil {
		s.hook = noopMessageHook{}
	}
	if s.newID == nil {
		s.newID = func() string { return "msg_" + uuid.NewString() }
	}
	return s
}

// Self returns the owning participant.
func (s *Store) Self() Participant {
	return s.self
}

// ConversationID derives the shared id for a participant pair.
func ConversationID(a, b string) string {
	ids := []string{strings.ToUpper(a), strings.ToUpper(b)}
	sort.Strings(ids)
	return "conv_" + ids[0] + "_" + ids[1]
}

// SearchUserByID looks a participant up by id, case-insensitively. Self is never returned.
func (s *Store) SearchUserByID(id string) (Participant, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" || id == s.self.ID {
		return Participant{}, false
	}
	return s.directory.Lookup(id)
}

// GetOrCreateConversation returns the conversation with otherID, creating it when missing.
func (s *Store) GetOrCreateConversation(ctx context.Context, otherID string) (Conversation, error) {
	otherID = strings.ToUpper(strings.TrimSpace(otherID))
	if otherID == s.self.ID {
		return Conversation{}, ErrSelfConversation
	}
	other, ok := s.directory.Lookup(otherID)
	if !ok {
		return Conversation{}, fmt.Errorf("%w: %s", ErrUserNotFound, otherID)
	}
	s.mu.Lock()
	conv, created := s.ensureConversationLocked(other)
	s.mu.Unlock()
	if created {
		s.telemetry.Record(ctx, "chat.conversation.create", map[string]any{
			"conversation_id": conv.ID,
			"participant":     s.self.ID,
		})
	}
	return conv.clone(), nil
}

func (s *Store) ensureConversationLocked(other Participant) (Conversation, bool) {
	id := ConversationID(s.self.ID, other.ID)
	if conv, ok := s.conversations[id]; ok {
		return conv, false
	}
	conv := Conversation{ID: id, OtherUser: other, CreatedAt: s.clock.Now()}
	s.conversations[id] = conv
	return conv, true
}

// SetActive opens a conversation and marks it read. An empty id closes it.
func (s *Store) SetActive(ctx context.Context, convID string) error {
	s.mu.Lock()
	if convID == "" {
		s.active = ""
		s.mu.Unlock()
		return nil
	}
	if _, ok := s.conversations[convID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	s.active = convID
	s.markReadLocked(convID)
	s.mu.Unlock()
	s.telemetry.Record(ctx, "chat.conversation.open", map[string]any{"conversation_id": convID})
	return nil
}

// Active returns the open conversation, if any.
func (s *Store) Active() (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[s.active]
	if !ok {
		return Conversation{}, false
	}
	return conv.clone(), true
}

// SendMessage appends a message authored by self and notifies the hook.
func (s *Store) SendMessage(ctx context.Context, convID, text, textEn string, replyTo *Message) (Message, error) {
	text = strings.TrimSpace(text)
	textEn = strings.TrimSpace(textEn)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if textEn == "" {
		textEn = text
	}

	s.mu.Lock()
	conv, ok := s.conversations[convID]
	if !ok {
		s.mu.Unlock()
		return Message{}, fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	msg := Message{
		ID:             s.newID(),
		ConversationID: convID,
		SenderID:       s.self.ID,
		RecipientID:    conv.OtherUser.ID,
		Text:           text,
		TextEn:         textEn,
		Timestamp:      s.clock.Now(),
	}
	if replyTo != nil {
		msg.ReplyTo = &ReplyRef{
			MessageID: replyTo.ID,
			SenderID:  replyTo.SenderID,
			Text:      replyTo.Text,
			TextEn:    replyTo.TextEn,
		}
	}
	s.appendLocked(conv, msg)
	s.mu.Unlock()

	payload := map[string]any{
		"conversation_id": convID,
		"message_id":      msg.ID,
		"reply":           msg.ReplyTo != nil,
	}
	if err := s.hook.MessageSent(ctx, msg.clone()); err != nil {
		payload["hook_error"] = err.Error()
	}
	s.telemetry.Record(ctx, "chat.message.send", payload)
	return msg.clone(), nil
}

// Receive stores a message authored by the other participant. Unread grows
// unless the conversation is open, in which case the message is stored read.
// Messages are kept in timestamp order whatever order they arrive in; one
// without a timestamp is stamped on arrival.
func (s *Store) Receive(ctx context.Context, msg Message) error {
	sender, ok := s.directory.Lookup(msg.SenderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, msg.SenderID)
	}
	s.mu.Lock()
	conv, _ := s.ensureConversationLocked(sender)
	msg = msg.clone()
	msg.ConversationID = conv.ID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.clock.Now()
	}
	if s.active == conv.ID {
		msg.Read = true
	} else {
		msg.Read = false
		conv.UnreadCount++
	}
	s.appendLocked(conv, msg)
	s.mu.Unlock()

	s.telemetry.Record(ctx, "chat.message.receive", map[string]any{
		"conversation_id": conv.ID,
		"message_id":      msg.ID,
	})
	return nil
}

// appendLocked inserts msg after every message not later than it.
func (s *Store) appendLocked(conv Conversation, msg Message) {
	list := s.messages[conv.ID]
	at := sort.Search(len(list), func(i int) bool { return list[i].Timestamp.After(msg.Timestamp) })
	list = slices.Insert(list, at, msg)
	s.messages[conv.ID] = list
	last := list[len(list)-1].clone()
	conv.LastMessage = &last
	s.conversations[conv.ID] = conv
}

// MarkAsRead zeroes the unread counter and marks incoming messages read.
func (s *Store) MarkAsRead(ctx context.Context, convID string) error {
	s.mu.Lock()
	if _, ok := s.conversations[convID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	s.markReadLocked(convID)
	s.mu.Unlock()
	s.telemetry.Record(ctx, "chat.conversation.read", map[string]any{"conversation_id": convID})
	return nil
}

func (s *Store) markReadLocked(convID string) {
	conv := s.conversations[convID]
	conv.UnreadCount = 0
	msgs := s.messages[convID]
	for i := range msgs {
		if msgs[i].SenderID != s.self.ID {
			msgs[i].Read = true
		}
	}
	if conv.LastMessage != nil && conv.LastMessage.SenderID != s.self.ID {
		last := conv.LastMessage.clone()
		last.Read = true
		conv.LastMessage = &last
	}
	s.conversations[convID] = conv
}

// TotalUnreadCount sums unread counters across conversations.
func (s *Store) TotalUnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, conv := range s.conversations {
		total += conv.UnreadCount
	}
	return total
}

// Conversations lists pinned conversations first, then by most recent activity.
func (s *Store) Conversations() []Conversation {
	s.mu.RLock()
	out := make([]Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv.clone())
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		ai, aj := out[i].lastActivity(), out[j].lastActivity()
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Conversation returns a single conversation.
func (s *Store) Conversation(convID string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[convID]
	if !ok {
		return Conversation{}, fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	return conv.clone(), nil
}

// Messages returns the conversation's messages in order, optionally filtered.
func (s *Store) Messages(convID string, filter MessageFilter) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conversations[convID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	msgs := s.messages[convID]
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if query != "" {
			text := msg.Text
			if filter.Language == "en" {
				text = msg.TextEn
			}
			if !strings.Contains(strings.ToLower(text), query) {
				continue
			}
		}
		out = append(out, msg.clone())
	}
	return out, nil
}

// Message looks one message up.
func (s *Store) Message(convID, msgID string) (Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, msg := range s.messages[convID] {
		if msg.ID == msgID {
			return msg.clone(), nil
		}
	}
	return Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, msgID)
}

// EditMessage rewrites one of self's messages and notifies the hook.
func (s *Store) EditMessage(ctx context.Context, convID, msgID, text, textEn string) (Message, error) {
	text = strings.TrimSpace(text)
	textEn = strings.TrimSpace(textEn)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if textEn == "" {
		textEn = text
	}
	s.mu.Lock()
	idx, err := s.indexLocked(convID, msgID)
	if err != nil {
		s.mu.Unlock()
		return Message{}, err
	}
	msg := s.messages[convID][idx]
	if msg.SenderID != s.self.ID {
		s.mu.Unlock()
		return Message{}, ErrNotOwner
	}
	msg.Text = text
	msg.TextEn = textEn
	msg.Edited = true
	s.replaceLocked(convID, idx, msg)
	s.mu.Unlock()

	payload := map[string]any{"conversation_id": convID, "message_id": msgID}
	if err := s.hook.MessageEdited(ctx, msg.clone()); err != nil {
		payload["hook_error"] = err.Error()
	}
	s.telemetry.Record(ctx, "chat.message.edit", payload)
	return msg.clone(), nil
}

// ApplyEdit mirrors an edit made by the other participant.
func (s *Store) ApplyEdit(ctx context.Context, edited Message) error {
	convID := ConversationID(s.self.ID, edited.SenderID)
	s.mu.Lock()
	idx, err := s.indexLocked(convID, edited.ID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	msg := s.messages[convID][idx]
	msg.Text = edited.Text
	msg.TextEn = edited.TextEn
	msg.Edited = true
	s.replaceLocked(convID, idx, msg)
	s.mu.Unlock()
	s.telemetry.Record(ctx, "chat.message.edit.apply", map[string]any{"conversation_id": convID, "message_id": edited.ID})
	return nil
}

func (s *Store) indexLocked(convID, msgID string) (int, error) {
	if _, ok := s.conversations[convID]; !ok {
		return -1, fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	for i, msg := range s.messages[convID] {
		if msg.ID == msgID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMessageNotFound, msgID)
}

func (s *Store) replaceLocked(convID string, idx int, msg Message) {
	s.messages[convID][idx] = msg
	conv := s.conversations[convID]
	if conv.LastMessage != nil && conv.LastMessage.ID == msg.ID {
		last := msg.clone()
		conv.LastMessage = &last
		s.conversations[convID] = conv
	}
}

// TogglePin flips the pinned flag and returns the new value.
func (s *Store) TogglePin(ctx context.Context, convID string) (bool, error) {
	s.mu.Lock()
	conv, ok := s.conversations[convID]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrConversationNotFound, convID)
	}
	conv.Pinned = !conv.Pinned
	s.conversations[convID] = conv
	s.mu.Unlock()
	s.telemetry.Record(ctx, "chat.conversation.pin", map[string]any{"conversation_id": convID, "pinned": conv.Pinned})
	return conv.Pinned, nil
}
