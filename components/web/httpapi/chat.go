package httpapi

import (
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/chat"
	"github.com/goliatone/go-transfers/components/chat/commands"
	"github.com/goliatone/go-transfers/components/chat/queries"
	"github.com/goliatone/go-transfers/components/web"
)

func (h *Handlers) HandleInbox(w http.ResponseWriter, r *http.Request, client *web.Client) {
	participantID, err := client.ParticipantID()
	if err != nil {
		writeError(w, err)
		return
	}
	inbox, err := h.App.Queries.Inbox.Query(r.Context(), queries.ConversationsInput{ParticipantID: participantID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inbox)
}

type startConversationPayload struct {
	UserID string `json:"userId"`
}

func (h *Handlers) HandleStartConversation(w http.ResponseWriter, r *http.Request, client *web.Client) {
	var payload startConversationPayload
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	conv, err := h.App.StartConversation(r.Context(), *client, payload.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) HandleSearchUser(w http.ResponseWriter, r *http.Request, client *web.Client) {
	participant, err := h.App.SearchUser(*client, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *Handlers) HandleMessages(w http.ResponseWriter, r *http.Request, client *web.Client) {
	participantID, err := client.ParticipantID()
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.URL.Query()
	messages, err := h.App.Queries.Messages.Query(r.Context(), queries.MessagesInput{
		ParticipantID:  participantID,
		ConversationID: r.PathValue("id"),
		Query:          query.Get("q"),
		Language:       query.Get("lang"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type messagePayload struct {
	Text      string `json:"text"`
	TextEn    string `json:"textEn"`
	ReplyToID string `json:"replyToId,omitempty"`
}

func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request, client *web.Client) {
	participantID, err := client.ParticipantID()
	if err != nil {
		writeError(w, err)
		return
	}
	var payload messagePayload
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	var sent chat.Message
	err = h.App.Commands.SendMessage.Execute(r.Context(), commands.SendMessageInput{
		ParticipantID:  participantID,
		ConversationID: r.PathValue("id"),
		Text:           payload.Text,
		TextEn:         payload.TextEn,
		ReplyToID:      payload.ReplyToID,
		Result:         &sent,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}

func (h *Handlers) HandleEditMessage(w http.ResponseWriter, r *http.Request, client *web.Client) {
	var payload messagePayload
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	edited, err := h.App.EditMessage(r.Context(), *client, commands.EditMessageInput{
		ConversationID: r.PathValue("id"),
		MessageID:      r.PathValue("message"),
		Text:           payload.Text,
		TextEn:         payload.TextEn,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edited)
}

func (h *Handlers) HandleMarkRead(w http.ResponseWriter, r *http.Request, client *web.Client) {
	h.conversationAction(w, r, client, h.App.Commands.MarkRead)
}

func (h *Handlers) HandleTogglePin(w http.ResponseWriter, r *http.Request, client *web.Client) {
	h.conversationAction(w, r, client, h.App.Commands.TogglePin)
}

func (h *Handlers) conversationAction(w http.ResponseWriter, r *http.Request, client *web.Client, cmd gocommand.Commander[commands.ConversationInput]) {
	conv, err := h.App.ConversationAction(r.Context(), *client, cmd, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// HandleEvents streams the signed-in participant's chat events as SSE.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request, client *web.Client) {
	if err := scopeToParticipant(r, client); err != nil {
		writeError(w, err)
		return
	}
	h.App.Broadcaster().ServeSSE(w, r)
}

// HandleWebSocket streams the same events over a WebSocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request, client *web.Client) {
	if err := scopeToParticipant(r, client); err != nil {
		writeError(w, err)
		return
	}
	h.App.Broadcaster().ServeWebSocket(w, r)
}

// scopeToParticipant pins the stream filter to the session's participant.
func scopeToParticipant(r *http.Request, client *web.Client) error {
	participantID, err := client.ParticipantID()
	if err != nil {
		return err
	}
	query := r.URL.Query()
	query.Set("participant", participantID)
	r.URL.RawQuery = query.Encode()
	return nil
}
