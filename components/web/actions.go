package web

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/chat"
	chatcommands "github.com/goliatone/go-transfers/components/chat/commands"
)

// StartConversation opens, or creates, the client's conversation with userID.
func (a *App) StartConversation(ctx context.Context, client Client, userID string) (chat.Conversation, error) {
	store, err := a.ChatStore(client)
	if err != nil {
		return chat.Conversation{}, err
	}
	return store.GetOrCreateConversation(ctx, userID)
}

// SearchUser looks a chat participant up by id on behalf of client.
func (a *App) SearchUser(client Client, id string) (chat.Participant, error) {
	store, err := a.ChatStore(client)
	if err != nil {
		return chat.Participant{}, err
	}
	participant, ok := store.SearchUserByID(id)
	if !ok {
		return chat.Participant{}, fmt.Errorf("%w: %s", chat.ErrUserNotFound, id)
	}
	return participant, nil
}

// EditMessage rewrites one of the client's messages and returns it.
func (a *App) EditMessage(ctx context.Context, client Client, input chatcommands.EditMessageInput) (chat.Message, error) {
	participantID, err := client.ParticipantID()
	if err != nil {
		return chat.Message{}, err
	}
	input.ParticipantID = participantID
	if err := a.Commands.EditMessage.Execute(ctx, input); err != nil {
		return chat.Message{}, err
	}
	store, err := a.ChatStore(client)
	if err != nil {
		return chat.Message{}, err
	}
	return store.Message(input.ConversationID, input.MessageID)
}

// ConversationAction runs cmd (mark read, toggle pin) on one of the client's
// conversations and returns the updated conversation.
func (a *App) ConversationAction(ctx context.Context, client Client, cmd gocommand.Commander[chatcommands.ConversationInput], conversationID string) (chat.Conversation, error) {
	participantID, err := client.ParticipantID()
	if err != nil {
		return chat.Conversation{}, err
	}
	input := chatcommands.ConversationInput{ParticipantID: participantID, ConversationID: conversationID}
	if err := cmd.Execute(ctx, input); err != nil {
		return chat.Conversation{}, err
	}
	store, err := a.ChatStore(client)
	if err != nil {
		return chat.Conversation{}, err
	}
	return store.Conversation(conversationID)
}

// PromotionFromForm reads the promotion form fields through value.
func PromotionFromForm(value func(string) string) (admin.PromotionInput, error) {
	input := admin.PromotionInput{
		Code:      value("code"),
		Type:      value("type"),
		Status:    value("status"),
		ExpiresAt: value("expiresAt"),
	}
	var err error
	if input.Value, err = parseFloat(value("value")); err != nil {
		return input, err
	}
	if input.MinOrder, err = parseFloat(value("minOrder")); err != nil {
		return input, err
	}
	if raw := strings.TrimSpace(value("maxUses")); raw != "" {
		if input.MaxUses, err = strconv.Atoi(raw); err != nil {
			return input, errors.Join(ErrBadRequest, err)
		}
	}
	return input, nil
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Join(ErrBadRequest, err)
	}
	return v, nil
}

// WithFlash appends err to target as the flash query parameter. A nil err
// returns target unchanged.
func WithFlash(target string, err error) string {
	if err == nil {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + url.Values{"flash": {err.Error()}}.Encode()
}

// ConversationURL is the chat page with conversationID open.
func ConversationURL(conversationID string) string {
	return PathChat + "?" + url.Values{"conversation": {conversationID}}.Encode()
}

// RefererPath returns the path of referer when it points back at host, and
// fallback otherwise. A stale flash parameter is dropped.
func RefererPath(referer, host, fallback string) string {
	ref, err := url.Parse(referer)
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != host) {
		return fallback
	}
	if ref.RawQuery != "" {
		query := ref.Query()
		query.Del("flash")
		if encoded := query.Encode(); encoded != "" {
			return ref.Path + "?" + encoded
		}
	}
	return ref.Path
}
