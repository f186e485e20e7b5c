package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-transfers/components/chat"
)

func TestConversationsQuery(t *testing.T) {
	ctx := context.Background()
	hub := chat.NewHub(chat.HubOptions{})
	defer hub.Close()

	ahmed, _ := hub.Store("TV12345")
	conv, err := ahmed.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, err)
	_, err = ahmed.SendMessage(ctx, conv.ID, "hi", "hi", nil)
	require.NoError(t, err)

	inbox, err := NewConversationsQuery(hub).Query(ctx, ConversationsInput{ParticipantID: "TV23456"})
	require.NoError(t, err)
	assert.Equal(t, "TV23456", inbox.Participant.ID)
	assert.Equal(t, 1, inbox.TotalUnread)
	require.Len(t, inbox.Conversations, 1)
	assert.Equal(t, conv.ID, inbox.Conversations[0].ID)

	_, err = NewConversationsQuery(hub).Query(ctx, ConversationsInput{ParticipantID: "nobody"})
	assert.True(t, errors.Is(err, chat.ErrUserNotFound))
}

func TestMessagesQuery(t *testing.T) {
	ctx := context.Background()
	hub := chat.NewHub(chat.HubOptions{})
	defer hub.Close()

	ahmed, _ := hub.Store("TV12345")
	conv, _ := ahmed.GetOrCreateConversation(ctx, "TV34567")
	_, _ = ahmed.SendMessage(ctx, conv.ID, "صباح الخير", "Good morning", nil)
	_, _ = ahmed.SendMessage(ctx, conv.ID, "مساء الخير", "Good evening", nil)

	msgs, err := NewMessagesQuery(hub).Query(ctx, MessagesInput{ParticipantID: "TV12345", ConversationID: conv.ID})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	msgs, err = NewMessagesQuery(hub).Query(ctx, MessagesInput{ParticipantID: "TV12345", ConversationID: conv.ID, Query: "evening", Language: "en"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Good evening", msgs[0].TextEn)

	_, err = NewMessagesQuery(nil).Query(ctx, MessagesInput{})
	assert.Error(t, err)
}
