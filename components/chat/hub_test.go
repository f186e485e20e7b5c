package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHubDeliversMessages(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(HubOptions{})
	defer hub.Close()

	ahmed, err := hub.Store("tv12345")
	require.NoError(t, err)
	sara, err := hub.Store("TV23456")
	require.NoError(t, err)

	again, err := hub.Store("TV12345")
	require.NoError(t, err)
	assert.Same(t, ahmed, again)

	conv, err := ahmed.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, err)
	sent, err := ahmed.SendMessage(ctx, conv.ID, "مرحبا سارة", "Hi Sara", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, sara.TotalUnreadCount())
	saraConvs := sara.Conversations()
	require.Len(t, saraConvs, 1)
	assert.Equal(t, conv.ID, saraConvs[0].ID)
	assert.Equal(t, "TV12345", saraConvs[0].OtherUser.ID)

	reply, err := sara.SendMessage(ctx, conv.ID, "أهلا", "Hello", &sent)
	require.NoError(t, err)
	assert.True(t, reply.Timestamp.After(sent.Timestamp))

	msgs, err := ahmed.Messages(conv.ID, MessageFilter{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, sent.ID, msgs[1].ReplyTo.MessageID)
	assert.Equal(t, 1, ahmed.TotalUnreadCount())

	_, err = ahmed.EditMessage(ctx, conv.ID, sent.ID, "مرحبا يا سارة", "Hello Sara")
	require.NoError(t, err)
	mirrored, err := sara.Message(conv.ID, sent.ID)
	require.NoError(t, err)
	assert.True(t, mirrored.Edited)
	assert.Equal(t, "Hello Sara", mirrored.TextEn)

	_, err = hub.Store("TV00000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHubPublishesEvents(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(HubOptions{})
	defer hub.Close()

	events, cancel := hub.Broadcaster().Subscribe()
	defer cancel()

	ahmed, _ := hub.Store("TV12345")
	conv, _ := ahmed.GetOrCreateConversation(ctx, "TV34567")
	_, err := ahmed.SendMessage(ctx, conv.ID, "hello", "hello", nil)
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, EventMessageSent, evt.Type)
		assert.Equal(t, conv.ID, evt.ConversationID)
		assert.True(t, evt.Involves("TV34567"))
		assert.False(t, evt.Involves("TV23456"))
	case <-time.After(time.Second):
		t.Fatalf("expected message event")
	}
}
