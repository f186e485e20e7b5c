package chat

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound         = errors.New("chat: user not found")
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrMessageNotFound      = errors.New("chat: message not found")
	ErrEmptyMessage         = errors.New("chat: message text is required")
	ErrNotOwner             = errors.New("chat: only the sender can edit a message")
	ErrSelfConversation     = errors.New("chat: cannot start a conversation with yourself")
)

// Participant is a chat user as shown in conversation lists.
type Participant struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	NameEn string `json:"nameEn" yaml:"name_en"`
	Photo  string `json:"photo,omitempty" yaml:"photo"`
	Status string `json:"status" yaml:"status"`
}

// ReplyRef is the quoted part of the message being replied to.
type ReplyRef struct {
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	TextEn    string `json:"textEn"`
}

// Message is a single chat line. A conversation keeps its messages in
// Timestamp order.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId,omitempty"`
	Text           string    `json:"text"`
	TextEn         string    `json:"textEn"`
	Timestamp      time.Time `json:"timestamp"`
	ReplyTo        *ReplyRef `json:"replyTo,omitempty"`
	Read           bool      `json:"read"`
	Edited         bool      `json:"edited"`
}

// Conversation is one side's view of a two-party chat.
type Conversation struct {
	ID          string      `json:"id"`
	OtherUser   Participant `json:"otherUser"`
	LastMessage *Message    `json:"lastMessage,omitempty"`
	UnreadCount int         `json:"unreadCount"`
	Pinned      bool        `json:"pinned"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (c Conversation) clone() Conversation {
	if c.LastMessage != nil {
		msg := c.LastMessage.clone()
		c.LastMessage = &msg
	}
	return c
}

// lastActivity is the ordering key for conversation lists.
func (c Conversation) lastActivity() time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.Timestamp
	}
	return c.CreatedAt
}

func (m Message) clone() Message {
	if m.ReplyTo != nil {
		ref := *m.ReplyTo
		m.ReplyTo = &ref
	}
	return m
}

// MessageFilter narrows Messages to texts containing Query in the given language.
type MessageFilter struct {
	Query    string
	Language string
}

// MessageHook observes messages authored in a Store.
type MessageHook interface {
	MessageSent(ctx context.Context, msg Message) error
	MessageEdited(ctx context.Context, msg Message) error
}

type noopMessageHook struct{}

func (noopMessageHook) MessageSent(context.Context, Message) error   { return nil }
func (noopMessageHook) MessageEdited(context.Context, Message) error { return nil }

// Telemetry records chat events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
