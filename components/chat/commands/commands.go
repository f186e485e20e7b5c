package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/chat"
)

// Telemetry allows commands to emit structured events.
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

type storeResolver interface {
	Store(participantID string) (*chat.Store, error)
}

func resolve(stores storeResolver, participantID string) (*chat.Store, error) {
	if stores == nil {
		return nil, errors.New("chat command requires a store resolver")
	}
	if participantID == "" {
		return nil, errors.New("chat command requires participant id")
	}
	return stores.Store(participantID)
}

// SendMessageInput sends Text from ParticipantID. ConversationID may be empty
// when RecipientID is set; the conversation is then created on demand.
type SendMessageInput struct {
	ParticipantID  string        `json:"participant_id"`
	ConversationID string        `json:"conversation_id"`
	RecipientID    string        `json:"recipient_id,omitempty"`
	Text           string        `json:"text"`
	TextEn         string        `json:"text_en"`
	ReplyToID      string        `json:"reply_to_id,omitempty"`
	Result         *chat.Message `json:"-"`
}

// SendMessageCommand appends a message to a conversation.
type SendMessageCommand struct {
	stores    storeResolver
	telemetry Telemetry
}

func NewSendMessageCommand(stores storeResolver, telemetry Telemetry) *SendMessageCommand {
	return &SendMessageCommand{stores: stores, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SendMessageInput] = (*SendMessageCommand)(nil)

func (c *SendMessageCommand) Execute(ctx context.Context, msg SendMessageInput) error {
	store, err := resolve(c.stores, msg.ParticipantID)
	if err != nil {
		return err
	}
	convID := msg.ConversationID
	if convID == "" {
		if msg.RecipientID == "" {
			return errors.New("send command requires conversation or recipient")
		}
		conv, err := store.GetOrCreateConversation(ctx, msg.RecipientID)
		if err != nil {
			return err
		}
		convID = conv.ID
	}
	var replyTo *chat.Message
	if msg.ReplyToID != "" {
		original, err := store.Message(convID, msg.ReplyToID)
		if err != nil {
			return err
		}
		replyTo = &original
	}
	sent, err := store.SendMessage(ctx, convID, msg.Text, msg.TextEn, replyTo)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = sent
	}
	c.telemetry.Record(ctx, "chat.command.send", map[string]any{
		"participant_id":  msg.ParticipantID,
		"conversation_id": convID,
	})
	return nil
}

// EditMessageInput rewrites one of the participant's own messages.
type EditMessageInput struct {
	ParticipantID  string `json:"participant_id"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Text           string `json:"text"`
	TextEn         string `json:"text_en"`
}

// EditMessageCommand edits a sent message.
type EditMessageCommand struct {
	stores    storeResolver
	telemetry Telemetry
}

func NewEditMessageCommand(stores storeResolver, telemetry Telemetry) *EditMessageCommand {
	return &EditMessageCommand{stores: stores, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditMessageInput] = (*EditMessageCommand)(nil)

func (c *EditMessageCommand) Execute(ctx context.Context, msg EditMessageInput) error {
	store, err := resolve(c.stores, msg.ParticipantID)
	if err != nil {
		return err
	}
	if _, err := store.EditMessage(ctx, msg.ConversationID, msg.MessageID, msg.Text, msg.TextEn); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chat.command.edit", map[string]any{
		"participant_id": msg.ParticipantID,
		"message_id":     msg.MessageID,
	})
	return nil
}

// ConversationInput targets one of the participant's conversations.
type ConversationInput struct {
	ParticipantID  string `json:"participant_id"`
	ConversationID string `json:"conversation_id"`
}

// MarkReadCommand zeroes a conversation's unread counter.
type MarkReadCommand struct {
	stores    storeResolver
	telemetry Telemetry
}

func NewMarkReadCommand(stores storeResolver, telemetry Telemetry) *MarkReadCommand {
	return &MarkReadCommand{stores: stores, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConversationInput] = (*MarkReadCommand)(nil)

func (c *MarkReadCommand) Execute(ctx context.Context, msg ConversationInput) error {
	store, err := resolve(c.stores, msg.ParticipantID)
	if err != nil {
		return err
	}
	if err := store.MarkAsRead(ctx, msg.ConversationID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chat.command.read", map[string]any{"conversation_id": msg.ConversationID})
	return nil
}

// TogglePinCommand pins or unpins a conversation.
type TogglePinCommand struct {
	stores    storeResolver
	telemetry Telemetry
}

func NewTogglePinCommand(stores storeResolver, telemetry Telemetry) *TogglePinCommand {
	return &TogglePinCommand{stores: stores, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConversationInput] = (*TogglePinCommand)(nil)

func (c *TogglePinCommand) Execute(ctx context.Context, msg ConversationInput) error {
	store, err := resolve(c.stores, msg.ParticipantID)
	if err != nil {
		return err
	}
	pinned, err := store.TogglePin(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chat.command.pin", map[string]any{"conversation_id": msg.ConversationID, "pinned": pinned})
	return nil
}
