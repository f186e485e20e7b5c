package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	mu     sync.Mutex
	sent   []Message
	edited []Message
	err    error
}

func (h *recordingHook) MessageSent(_ context.Context, msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, msg)
	return h.err
}

func (h *recordingHook) MessageEdited(_ context.Context, msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.edited = append(h.edited, msg)
	return h.err
}

func newRiderStore(hook MessageHook) *Store {
	return NewStore(Options{
		Self:      DefaultParticipants()[0],
		Directory: NewMemoryDirectory(DefaultParticipants()...),
		Clock:     newFixedClock(),
		Hook:      hook,
		NewID:     sequentialIDs(),
	})
}

func TestSearchUserByID(t *testing.T) {
	store := newRiderStore(nil)

	found, ok := store.SearchUserByID("tv23456")
	require.True(t, ok)
	assert.Equal(t, "Sara Ali", found.NameEn)

	_, ok = store.SearchUserByID("TV12345")
	assert.False(t, ok, "self is not a search result")
	_, ok = store.SearchUserByID("TV00000")
	assert.False(t, ok)
	_, ok = store.SearchUserByID("  ")
	assert.False(t, ok)
}

func TestGetOrCreateConversation(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)

	conv, err := store.GetOrCreateConversation(ctx, "tv23456")
	require.NoError(t, err)
	assert.Equal(t, "conv_TV12345_TV23456", conv.ID)
	assert.Equal(t, "TV23456", conv.OtherUser.ID)
	assert.Nil(t, conv.LastMessage)

	again, err := store.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
	assert.Equal(t, conv.CreatedAt, again.CreatedAt)
	assert.Len(t, store.Conversations(), 1)

	_, err = store.GetOrCreateConversation(ctx, "TV99999")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.GetOrCreateConversation(ctx, "TV12345")
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestConversationIDIsSymmetric(t *testing.T) {
	assert.Equal(t, ConversationID("TV2", "tv1"), ConversationID("TV1", "TV2"))
	assert.Equal(t, "conv_TV1_TV2", ConversationID("TV2", "TV1"))
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	hook := &recordingHook{}
	store := newRiderStore(hook)
	conv, err := store.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, err)

	first, err := store.SendMessage(ctx, conv.ID, "  مرحبا  ", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", first.Text)
	assert.Equal(t, "مرحبا", first.TextEn, "english text falls back to text")
	assert.Equal(t, "TV12345", first.SenderID)
	assert.Equal(t, "TV23456", first.RecipientID)

	second, err := store.SendMessage(ctx, conv.ID, "كيف حالك", "How are you", &first)
	require.NoError(t, err)
	require.NotNil(t, second.ReplyTo)
	assert.Equal(t, first.ID, second.ReplyTo.MessageID)
	assert.True(t, second.Timestamp.After(first.Timestamp))

	msgs, err := store.Messages(conv.ID, MessageFilter{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{first.ID, second.ID}, []string{msgs[0].ID, msgs[1].ID})

	updated, err := store.Conversation(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastMessage)
	assert.Equal(t, second.ID, updated.LastMessage.ID)
	assert.Len(t, hook.sent, 2)
}

func TestSendMessageRejectsEmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	hook := &recordingHook{}
	store := newRiderStore(hook)
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")

	_, err := store.SendMessage(ctx, conv.ID, "   ", "hi", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = store.SendMessage(ctx, "conv_missing", "hi", "hi", nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	msgs, _ := store.Messages(conv.ID, MessageFilter{})
	assert.Empty(t, msgs)
	assert.Empty(t, hook.sent)
}

func TestSendMessageKeepsMessageWhenHookFails(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(&recordingHook{err: errors.New("offline")})
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")

	_, err := store.SendMessage(ctx, conv.ID, "hello", "hello", nil)
	require.NoError(t, err)
	msgs, _ := store.Messages(conv.ID, MessageFilter{})
	assert.Len(t, msgs, 1)
}

func TestReceiveAndMarkAsRead(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)

	incoming := Message{ID: "m1", SenderID: "TV23456", Text: "أهلا", TextEn: "Hi"}
	require.NoError(t, store.Receive(ctx, incoming))
	require.NoError(t, store.Receive(ctx, Message{ID: "m2", SenderID: "TV23456", Text: "هل أنت هنا", TextEn: "Are you there"}))
	require.NoError(t, store.Receive(ctx, Message{ID: "m3", SenderID: "TV34567", Text: "مساء الخير", TextEn: "Good evening"}))

	assert.Equal(t, 3, store.TotalUnreadCount())
	convID := ConversationID("TV12345", "TV23456")
	conv, err := store.Conversation(convID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCount)

	require.NoError(t, store.MarkAsRead(ctx, convID))
	conv, _ = store.Conversation(convID)
	assert.Zero(t, conv.UnreadCount)
	assert.True(t, conv.LastMessage.Read)
	msgs, _ := store.Messages(convID, MessageFilter{})
	for _, msg := range msgs {
		assert.True(t, msg.Read)
	}
	assert.Equal(t, 1, store.TotalUnreadCount())

	assert.ErrorIs(t, store.MarkAsRead(ctx, "conv_nope"), ErrConversationNotFound)
	assert.ErrorIs(t, store.Receive(ctx, Message{ID: "x", SenderID: "TV00000"}), ErrUserNotFound)
}

func TestReceiveIntoActiveConversationIsRead(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, store.SetActive(ctx, conv.ID))

	require.NoError(t, store.Receive(ctx, Message{ID: "m1", SenderID: "TV23456", Text: "hi"}))
	assert.Zero(t, store.TotalUnreadCount())
	msgs, _ := store.Messages(conv.ID, MessageFilter{})
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestSetActiveMarksRead(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	require.NoError(t, store.Receive(ctx, Message{ID: "m1", SenderID: "TV23456", Text: "hi"}))
	convID := ConversationID("TV12345", "TV23456")

	_, ok := store.Active()
	assert.False(t, ok)

	require.NoError(t, store.SetActive(ctx, convID))
	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, convID, active.ID)
	assert.Zero(t, active.UnreadCount)

	require.NoError(t, store.SetActive(ctx, ""))
	_, ok = store.Active()
	assert.False(t, ok)
	assert.ErrorIs(t, store.SetActive(ctx, "conv_nope"), ErrConversationNotFound)
}

func TestConversationsOrdering(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	sara, _ := store.GetOrCreateConversation(ctx, "TV23456")
	khalid, _ := store.GetOrCreateConversation(ctx, "TV34567")
	noura, _ := store.GetOrCreateConversation(ctx, "TV45678")

	_, err := store.SendMessage(ctx, sara.ID, "latest", "latest", nil)
	require.NoError(t, err)

	ids := func() []string {
		var out []string
		for _, conv := range store.Conversations() {
			out = append(out, conv.ID)
		}
		return out
	}
	assert.Equal(t, []string{sara.ID, noura.ID, khalid.ID}, ids())

	pinned, err := store.TogglePin(ctx, khalid.ID)
	require.NoError(t, err)
	assert.True(t, pinned)
	assert.Equal(t, []string{khalid.ID, sara.ID, noura.ID}, ids())

	pinned, err = store.TogglePin(ctx, khalid.ID)
	require.NoError(t, err)
	assert.False(t, pinned)
	_, err = store.TogglePin(ctx, "conv_nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMessagesFilter(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")
	_, _ = store.SendMessage(ctx, conv.ID, "مرحبا", "Hello there", nil)
	_, _ = store.SendMessage(ctx, conv.ID, "وداعا", "Goodbye", nil)

	msgs, err := store.Messages(conv.ID, MessageFilter{Query: "HELLO", Language: "en"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello there", msgs[0].TextEn)

	msgs, err = store.Messages(conv.ID, MessageFilter{Query: "وداعا", Language: "ar"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msgs, err = store.Messages(conv.ID, MessageFilter{Query: "hello", Language: "ar"})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = store.Messages("conv_nope", MessageFilter{})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestEditMessage(t *testing.T) {
	ctx := context.Background()
	hook := &recordingHook{}
	store := newRiderStore(hook)
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")
	sent, _ := store.SendMessage(ctx, conv.ID, "helo", "helo", nil)

	edited, err := store.EditMessage(ctx, conv.ID, sent.ID, "hello", "")
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, "hello", edited.TextEn)
	assert.Equal(t, sent.Timestamp, edited.Timestamp)

	current, _ := store.Conversation(conv.ID)
	assert.Equal(t, "hello", current.LastMessage.Text)
	require.Len(t, hook.edited, 1)

	require.NoError(t, store.Receive(ctx, Message{ID: "theirs", SenderID: "TV23456", Text: "hi"}))
	_, err = store.EditMessage(ctx, conv.ID, "theirs", "changed", "changed")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = store.EditMessage(ctx, conv.ID, "missing", "x", "x")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = store.EditMessage(ctx, conv.ID, sent.ID, " ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReturnedConversationsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	conv, _ := store.GetOrCreateConversation(ctx, "TV23456")
	_, _ = store.SendMessage(ctx, conv.ID, "original", "original", nil)

	list := store.Conversations()
	list[0].LastMessage.Text = "tampered"

	again, _ := store.Conversation(conv.ID)
	assert.Equal(t, "original", again.LastMessage.Text)
}

func TestReceiveKeepsTimestampOrder(t *testing.T) {
	ctx := context.Background()
	store := newRiderStore(nil)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Receive(ctx, Message{ID: "late", SenderID: "TV23456", Text: "late", Timestamp: base.Add(2 * time.Minute)}))
	require.NoError(t, store.Receive(ctx, Message{ID: "early", SenderID: "TV23456", Text: "early", Timestamp: base}))
	require.NoError(t, store.Receive(ctx, Message{ID: "middle", SenderID: "TV23456", Text: "middle", Timestamp: base.Add(time.Minute)}))

	convID := ConversationID("TV12345", "TV23456")
	msgs, err := store.Messages(convID, MessageFilter{})
	require.NoError(t, err)
	var ids []string
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}
	assert.Equal(t, []string{"early", "middle", "late"}, ids)

	conv, err := store.Conversation(convID)
	require.NoError(t, err)
	assert.Equal(t, "late", conv.LastMessage.ID)
	assert.Equal(t, 3, conv.UnreadCount)
}
