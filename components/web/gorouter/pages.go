package gorouter

import (
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-transfers/components/admin/commands"
	chatcommands "github.com/goliatone/go-transfers/components/chat/commands"
	"github.com/goliatone/go-transfers/components/web"
)

// registerForms mounts the HTML form posts. Each one redirects back to the
// page it came from, carrying any failure as a flash message.
func registerForms[T any](r router.Router[T], h handlers) {
	r.Post(web.PathLogin, h.client(func(ctx router.Context, client *web.Client) error {
		req := web.LoginRequest{Email: ctx.FormValue("email"), Password: ctx.FormValue("password")}
		resp, err := h.app.AdminLogin(ctx.Context(), client, req)
		if err != nil {
			return h.render(ctx, client, web.StatusFor(err), web.PageRequest{Path: web.PathLogin, Flash: err.Error()})
		}
		h.setCookie(ctx, client)
		return ctx.Redirect(resp.Redirect, http.StatusFound)
	}))
	r.Post("/logout", h.client(func(ctx router.Context, client *web.Client) error {
		if err := h.app.Logout(ctx.Context(), client); err != nil {
			return respondError(ctx, err)
		}
		h.setCookie(ctx, client)
		return ctx.Redirect(web.PathLogin, http.StatusFound)
	}))

	r.Post(web.PathAdmin+"/preferences", h.adminPage(func(ctx router.Context) error {
		input := commands.UpdatePreferencesInput{
			Action:   ctx.FormValue("action"),
			Currency: ctx.FormValue("currency"),
		}
		err := h.app.Commands.Preferences.Execute(ctx.Context(), input)
		return redirectBack(ctx, web.RefererPath(ctx.Referer(), ctx.Header("Host"), web.PathAdmin), err)
	}))
	r.Post(web.PathAdmin+"/promotions", h.adminPage(func(ctx router.Context) error {
		input, err := web.PromotionFromForm(func(key string) string { return ctx.FormValue(key) })
		if err == nil {
			err = h.app.Commands.AddPromotion.Execute(ctx.Context(), commands.AddPromotionInput{Promotion: input})
		}
		return redirectBack(ctx, web.PathAdmin+"/promotions", err)
	}))
	r.Post(web.PathAdmin+"/drivers/:id/verify", h.adminPage(func(ctx router.Context) error {
		err := h.app.Commands.VerifyDriver.Execute(ctx.Context(), commands.VerifyDriverInput{DriverID: ctx.Param("id")})
		return redirectBack(ctx, web.PathAdmin+"/drivers", err)
	}))
	r.Post(web.PathAdmin+"/:collection/:id/status", h.adminPage(func(ctx router.Context) error {
		input := commands.UpdateStatusInput{
			Collection: ctx.Param("collection"),
			ID:         ctx.Param("id"),
			Status:     ctx.FormValue("status"),
		}
		err := h.app.Commands.UpdateStatus.Execute(ctx.Context(), input)
		return redirectBack(ctx, web.PathAdmin+"/"+input.Collection, err)
	}))

	r.Post(web.PathChat+"/conversations", h.client(func(ctx router.Context, client *web.Client) error {
		conv, err := h.app.StartConversation(ctx.Context(), *client, ctx.FormValue("user_id"))
		switch {
		case errors.Is(err, web.ErrUnauthorized):
			return ctx.Redirect(web.PathLogin, http.StatusFound)
		case err != nil:
			return redirectBack(ctx, web.PathChat, err)
		}
		return ctx.Redirect(web.ConversationURL(conv.ID), http.StatusFound)
	}))
	r.Post(web.PathChat+"/conversations/:id/messages", h.client(func(ctx router.Context, client *web.Client) error {
		participantID, err := client.ParticipantID()
		if err != nil {
			return ctx.Redirect(web.PathLogin, http.StatusFound)
		}
		convID := ctx.Param("id")
		err = h.app.Commands.SendMessage.Execute(ctx.Context(), chatcommands.SendMessageInput{
			ParticipantID:  participantID,
			ConversationID: convID,
			Text:           ctx.FormValue("text"),
			TextEn:         ctx.FormValue("text_en"),
			ReplyToID:      ctx.FormValue("reply_to"),
		})
		return redirectBack(ctx, web.ConversationURL(convID), err)
	}))
}

func registerPages[T any](r router.Router[T], h handlers) {
	for _, path := range []string{web.PathHome, web.PathLogin, web.PathAdmin, web.PathChat} {
		r.Get(path, h.client(h.page(fixedPath(path))))
	}
	r.Get(web.PathAdmin+"/:section", h.client(h.page(func(ctx router.Context) string {
		return web.PathAdmin + "/" + ctx.Param("section")
	})))
	r.Get("/*", h.client(h.page(func(ctx router.Context) string {
		return "/" + strings.TrimPrefix(ctx.Param("*"), "/")
	})))
}

// adminPage redirects anyone but the operator to the login page.
func (h handlers) adminPage(next func(router.Context) error) router.HandlerFunc {
	return h.client(func(ctx router.Context, client *web.Client) error {
		if web.RequireAdmin(*client) != nil {
			return ctx.Redirect(web.PathLogin, http.StatusFound)
		}
		return next(ctx)
	})
}

// page guards and renders the page whose path pathOf extracts.
func (h handlers) page(pathOf func(router.Context) string) clientHandler {
	return func(ctx router.Context, client *web.Client) error {
		path := pathOf(ctx)
		if redirect, ok := web.Guard(path, client.State()); !ok {
			return ctx.Redirect(redirect, http.StatusFound)
		}
		return h.render(ctx, client, http.StatusOK, web.PageRequest{
			Path:         path,
			Status:       ctx.Query("status"),
			Search:       ctx.Query("search"),
			Conversation: ctx.Query("conversation"),
			Flash:        ctx.Query("flash"),
		})
	}
}

func (h handlers) render(ctx router.Context, client *web.Client, status int, req web.PageRequest) error {
	html, err := h.app.RenderPage(ctx.Context(), *client, req)
	if err != nil {
		if errors.Is(err, web.ErrUnauthorized) {
			return ctx.Redirect(web.PathLogin, http.StatusFound)
		}
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Status(status).Send([]byte(html))
}

func fixedPath(path string) func(router.Context) string {
	return func(router.Context) string { return path }
}

func redirectBack(ctx router.Context, target string, err error) error {
	return ctx.Redirect(web.WithFlash(target, err), http.StatusSeeOther)
}
