package gorouter

import (
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/admin/commands"
	"github.com/goliatone/go-transfers/components/admin/queries"
	"github.com/goliatone/go-transfers/components/chat"
	chatcommands "github.com/goliatone/go-transfers/components/chat/commands"
	chatqueries "github.com/goliatone/go-transfers/components/chat/queries"
	"github.com/goliatone/go-transfers/components/web"
)

func registerSession[T any](r router.Router[T], h handlers) {
	r.Get("/session", h.client(func(ctx router.Context, client *web.Client) error {
		return ctx.JSON(http.StatusOK, client.State())
	}))
	r.Post("/session/login", h.client(func(ctx router.Context, client *web.Client) error {
		var payload web.LoginRequest
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		resp, err := h.app.Login(ctx.Context(), client, payload)
		if err != nil {
			return respondError(ctx, err)
		}
		h.setCookie(ctx, client)
		return ctx.JSON(http.StatusOK, resp)
	}))
	r.Post("/session/register", h.client(func(ctx router.Context, client *web.Client) error {
		var payload web.RegisterRequest
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		user, err := h.app.Register(ctx.Context(), client, payload)
		if err != nil {
			return respondError(ctx, err)
		}
		h.setCookie(ctx, client)
		return ctx.JSON(http.StatusCreated, user)
	}))
	r.Post("/session/logout", h.client(h.logout))
	r.Post("/admin/login", h.client(func(ctx router.Context, client *web.Client) error {
		var payload web.LoginRequest
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		resp, err := h.app.AdminLogin(ctx.Context(), client, payload)
		if err != nil {
			return respondError(ctx, err)
		}
		h.setCookie(ctx, client)
		return ctx.JSON(http.StatusOK, resp)
	}))
	r.Post("/admin/logout", h.client(h.logout))
}

func (h handlers) logout(ctx router.Context, client *web.Client) error {
	if err := h.app.Logout(ctx.Context(), client); err != nil {
		return respondError(ctx, err)
	}
	h.setCookie(ctx, client)
	return ctx.JSON(http.StatusOK, client.State())
}

func registerAdmin[T any](r router.Router[T], h handlers) {
	r.Get("/admin/stats", h.admin(func(ctx router.Context, _ *web.Client) error {
		result, err := h.app.Queries.Stats.Query(ctx.Context(), struct{}{})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))
	r.Get("/admin/overview", h.admin(func(ctx router.Context, _ *web.Client) error {
		overview, err := h.app.Overview(ctx.Context(), h.app.Preferences())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, overview)
	}))
	r.Get("/admin/preferences", h.admin(func(ctx router.Context, _ *web.Client) error {
		return ctx.JSON(http.StatusOK, h.app.Preferences())
	}))
	r.Post("/admin/preferences", h.admin(func(ctx router.Context, _ *web.Client) error {
		var payload commands.UpdatePreferencesInput
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		if err := h.app.Commands.Preferences.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, h.app.Preferences())
	}))
	r.Post("/admin/promotions", h.admin(func(ctx router.Context, _ *web.Client) error {
		var payload admin.PromotionInput
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		var created admin.Promotion
		if err := h.app.Commands.AddPromotion.Execute(ctx.Context(), commands.AddPromotionInput{Promotion: payload, Result: &created}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))
	r.Post("/admin/drivers/:id/verify", h.admin(func(ctx router.Context, _ *web.Client) error {
		input := commands.VerifyDriverInput{DriverID: ctx.Param("id")}
		if err := h.app.Commands.VerifyDriver.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "verified", "id": input.DriverID})
	}))
	r.Post("/admin/:collection/:id/status", h.admin(func(ctx router.Context, _ *web.Client) error {
		var payload struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		input := commands.UpdateStatusInput{Collection: ctx.Param("collection"), ID: ctx.Param("id"), Status: payload.Status}
		if err := h.app.Commands.UpdateStatus.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, input)
	}))
	r.Get("/admin/:collection", h.admin(func(ctx router.Context, _ *web.Client) error {
		result, err := h.app.Queries.List.Query(ctx.Context(), queries.ListInput{
			Collection: ctx.Param("collection"),
			Status:     ctx.Query("status"),
			Search:     ctx.Query("search"),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))
}

type messagePayload struct {
	Text      string `json:"text"`
	TextEn    string `json:"textEn"`
	ReplyToID string `json:"replyToId"`
}

func registerChat[T any](r router.Router[T], h handlers) {
	r.Get("/chat/conversations", h.participant(func(ctx router.Context, _ *web.Client, participantID string) error {
		inbox, err := h.app.Queries.Inbox.Query(ctx.Context(), chatqueries.ConversationsInput{ParticipantID: participantID})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, inbox)
	}))
	r.Post("/chat/conversations", h.client(func(ctx router.Context, client *web.Client) error {
		var payload struct {
			UserID string `json:"userId"`
		}
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		conv, err := h.app.StartConversation(ctx.Context(), *client, payload.UserID)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, conv)
	}))
	r.Get("/chat/users/:id", h.client(func(ctx router.Context, client *web.Client) error {
		participant, err := h.app.SearchUser(*client, ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, participant)
	}))
	r.Get("/chat/events", h.participant(h.events))
	r.Get("/chat/conversations/:id/messages", h.participant(func(ctx router.Context, _ *web.Client, participantID string) error {
		messages, err := h.app.Queries.Messages.Query(ctx.Context(), chatqueries.MessagesInput{
			ParticipantID:  participantID,
			ConversationID: ctx.Param("id"),
			Query:          ctx.Query("q"),
			Language:       ctx.Query("lang"),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, messages)
	}))
	r.Post("/chat/conversations/:id/messages", h.participant(func(ctx router.Context, _ *web.Client, participantID string) error {
		var payload messagePayload
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		var sent chat.Message
		err := h.app.Commands.SendMessage.Execute(ctx.Context(), chatcommands.SendMessageInput{
			ParticipantID:  participantID,
			ConversationID: ctx.Param("id"),
			Text:           payload.Text,
			TextEn:         payload.TextEn,
			ReplyToID:      payload.ReplyToID,
			Result:         &sent,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, sent)
	}))
	r.Patch("/chat/conversations/:id/messages/:message", h.client(func(ctx router.Context, client *web.Client) error {
		var payload messagePayload
		if err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, err)
		}
		edited, err := h.app.EditMessage(ctx.Context(), *client, chatcommands.EditMessageInput{
			ConversationID: ctx.Param("id"),
			MessageID:      ctx.Param("message"),
			Text:           payload.Text,
			TextEn:         payload.TextEn,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, edited)
	}))
	r.Post("/chat/conversations/:id/read", h.client(h.conversationAction(h.app.Commands.MarkRead)))
	r.Post("/chat/conversations/:id/pin", h.client(h.conversationAction(h.app.Commands.TogglePin)))
}

func (h handlers) conversationAction(cmd gocommand.Commander[chatcommands.ConversationInput]) clientHandler {
	return func(ctx router.Context, client *web.Client) error {
		conv, err := h.app.ConversationAction(ctx.Context(), *client, cmd, ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, conv)
	}
}

// events streams the participant's chat events as server sent events. The
// stream ends when the broadcaster closes or the client stops reading.
func (h handlers) events(ctx router.Context, _ *web.Client, participantID string) error {
	ctx.SetHeader("Content-Type", "text/event-stream")
	ctx.SetHeader("Cache-Control", "no-cache")
	ctx.SetHeader("Connection", "keep-alive")
	ctx.SetHeader("X-Accel-Buffering", "no")

	streamCtx := ctx.Context()
	reader, writer := io.Pipe()
	go func() {
		err := h.app.Broadcaster().Stream(streamCtx, participantID, func(event chat.MessageEvent) error {
			return chat.WriteSSE(writer, event)
		})
		_ = writer.CloseWithError(err)
	}()
	return ctx.SendStream(reader)
}

func registerWebSocket[T any](r router.Router[T], h handlers, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		client, err := h.resolve(ws)
		if err != nil {
			return ws.Close()
		}
		participantID, err := client.ParticipantID()
		if err != nil {
			return ws.Close()
		}
		err = h.app.Broadcaster().Stream(ws.Context(), participantID, func(event chat.MessageEvent) error {
			return ws.WriteJSON(event)
		})
		if err != nil {
			return err
		}
		return ws.Close()
	})
}
