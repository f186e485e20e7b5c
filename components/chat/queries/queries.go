package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/chat"
)

type storeResolver interface {
	Store(participantID string) (*chat.Store, error)
}

// ConversationsInput selects the participant whose inbox is listed.
type ConversationsInput struct {
	ParticipantID string `json:"participant_id"`
}

// Inbox is a participant's conversation list.
type Inbox struct {
	Participant   chat.Participant    `json:"participant"`
	Conversations []chat.Conversation `json:"conversations"`
	TotalUnread   int                 `json:"totalUnread"`
}

// ConversationsQuery lists a participant's conversations.
type ConversationsQuery struct {
	stores storeResolver
}

func NewConversationsQuery(stores storeResolver) *ConversationsQuery {
	return &ConversationsQuery{stores: stores}
}

var _ gocommand.Querier[ConversationsInput, Inbox] = (*ConversationsQuery)(nil)

func (q *ConversationsQuery) Query(_ context.Context, input ConversationsInput) (Inbox, error) {
	if q.stores == nil {
		return Inbox{}, errors.New("conversations query requires a store resolver")
	}
	store, err := q.stores.Store(input.ParticipantID)
	if err != nil {
		return Inbox{}, err
	}
	return Inbox{
		Participant:   store.Self(),
		Conversations: store.Conversations(),
		TotalUnread:   store.TotalUnreadCount(),
	}, nil
}

// MessagesInput selects a conversation's messages, optionally filtered.
type MessagesInput struct {
	ParticipantID  string `json:"participant_id"`
	ConversationID string `json:"conversation_id"`
	Query          string `json:"q,omitempty"`
	Language       string `json:"lang,omitempty"`
}

// MessagesQuery returns a conversation's messages in order.
type MessagesQuery struct {
	stores storeResolver
}

func NewMessagesQuery(stores storeResolver) *MessagesQuery {
	return &MessagesQuery{stores: stores}
}

var _ gocommand.Querier[MessagesInput, []chat.Message] = (*MessagesQuery)(nil)

func (q *MessagesQuery) Query(_ context.Context, input MessagesInput) ([]chat.Message, error) {
	if q.stores == nil {
		return nil, errors.New("messages query requires a store resolver")
	}
	store, err := q.stores.Store(input.ParticipantID)
	if err != nil {
		return nil, err
	}
	return store.Messages(input.ConversationID, chat.MessageFilter{Query: input.Query, Language: input.Language})
}
