package httpapi

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-transfers/components/admin/commands"
	chatcommands "github.com/goliatone/go-transfers/components/chat/commands"
	"github.com/goliatone/go-transfers/components/web"
)

func (h *Handlers) registerPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /", h.withClient(h.HandlePage))
	mux.HandleFunc("POST /login", h.withClient(h.HandleLoginForm))
	mux.HandleFunc("POST /logout", h.withClient(h.HandleLogoutForm))
	mux.HandleFunc("POST /admin/preferences", h.withAdminPage(h.HandlePreferencesForm))
	mux.HandleFunc("POST /admin/{collection}/{id}/status", h.withAdminPage(h.HandleStatusForm))
	mux.HandleFunc("POST /admin/drivers/{id}/verify", h.withAdminPage(h.HandleVerifyForm))
	mux.HandleFunc("POST /admin/promotions", h.withAdminPage(h.HandlePromotionForm))
	mux.HandleFunc("POST /chat/conversations", h.withClient(h.HandleConversationForm))
	mux.HandleFunc("POST /chat/conversations/{id}/messages", h.withClient(h.HandleMessageForm))
}

func (h *Handlers) withAdminPage(next clientHandler) http.HandlerFunc {
	return h.withClient(func(w http.ResponseWriter, r *http.Request, client *web.Client) {
		if web.RequireAdmin(*client) != nil {
			http.Redirect(w, r, web.PathLogin, http.StatusFound)
			return
		}
		next(w, r, client)
	})
}

// HandlePage applies the route guard and renders the page.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request, client *web.Client) {
	if redirect, ok := web.Guard(r.URL.Path, client.State()); !ok {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	query := r.URL.Query()
	h.renderPage(w, r, client, http.StatusOK, web.PageRequest{
		Path:         r.URL.Path,
		Status:       query.Get("status"),
		Search:       query.Get("search"),
		Conversation: query.Get("conversation"),
		Flash:        query.Get("flash"),
	})
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, client *web.Client, status int, req web.PageRequest) {
	html, err := h.App.RenderPage(r.Context(), *client, req)
	if err != nil {
		if errors.Is(err, web.ErrUnauthorized) {
			http.Redirect(w, r, web.PathLogin, http.StatusFound)
			return
		}
		http.Error(w, err.Error(), web.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

// HandleLoginForm is the operator sign-in form.
func (h *Handlers) HandleLoginForm(w http.ResponseWriter, r *http.Request, client *web.Client) {
	req := web.LoginRequest{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	resp, err := h.App.AdminLogin(r.Context(), client, req)
	if err != nil {
		h.renderPage(w, r, client, web.StatusFor(err), web.PageRequest{Path: web.PathLogin, Flash: err.Error()})
		return
	}
	h.setCookie(w, client)
	http.Redirect(w, r, resp.Redirect, http.StatusFound)
}

func (h *Handlers) HandleLogoutForm(w http.ResponseWriter, r *http.Request, client *web.Client) {
	if err := h.App.Logout(r.Context(), client); err != nil {
		http.Error(w, err.Error(), web.StatusFor(err))
		return
	}
	h.setCookie(w, client)
	http.Redirect(w, r, web.PathLogin, http.StatusFound)
}

func (h *Handlers) HandlePreferencesForm(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	input := commands.UpdatePreferencesInput{
		Action:   r.PostFormValue("action"),
		Currency: r.PostFormValue("currency"),
	}
	err := h.App.Commands.Preferences.Execute(r.Context(), input)
	redirectBack(w, r, web.RefererPath(r.Referer(), r.Host, web.PathAdmin), err)
}

func (h *Handlers) HandleStatusForm(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	input := commands.UpdateStatusInput{
		Collection: r.PathValue("collection"),
		ID:         r.PathValue("id"),
		Status:     r.PostFormValue("status"),
	}
	err := h.App.Commands.UpdateStatus.Execute(r.Context(), input)
	redirectBack(w, r, web.PathAdmin+"/"+input.Collection, err)
}

func (h *Handlers) HandleVerifyForm(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	err := h.App.Commands.VerifyDriver.Execute(r.Context(), commands.VerifyDriverInput{DriverID: r.PathValue("id")})
	redirectBack(w, r, web.PathAdmin+"/drivers", err)
}

func (h *Handlers) HandlePromotionForm(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	input, err := web.PromotionFromForm(r.PostFormValue)
	if err == nil {
		err = h.App.Commands.AddPromotion.Execute(r.Context(), commands.AddPromotionInput{Promotion: input})
	}
	redirectBack(w, r, web.PathAdmin+"/promotions", err)
}

func (h *Handlers) HandleConversationForm(w http.ResponseWriter, r *http.Request, client *web.Client) {
	conv, err := h.App.StartConversation(r.Context(), *client, r.PostFormValue("user_id"))
	switch {
	case errors.Is(err, web.ErrUnauthorized):
		http.Redirect(w, r, web.PathLogin, http.StatusFound)
	case err != nil:
		redirectBack(w, r, web.PathChat, err)
	default:
		http.Redirect(w, r, web.ConversationURL(conv.ID), http.StatusFound)
	}
}

func (h *Handlers) HandleMessageForm(w http.ResponseWriter, r *http.Request, client *web.Client) {
	participantID, err := client.ParticipantID()
	if err != nil {
		http.Redirect(w, r, web.PathLogin, http.StatusFound)
		return
	}
	convID := r.PathValue("id")
	text := r.PostFormValue("text")
	err = h.App.Commands.SendMessage.Execute(r.Context(), chatcommands.SendMessageInput{
		ParticipantID:  participantID,
		ConversationID: convID,
		Text:           text,
		TextEn:         r.PostFormValue("text_en"),
		ReplyToID:      r.PostFormValue("reply_to"),
	})
	redirectBack(w, r, web.ConversationURL(convID), err)
}

// redirectBack sends the browser to target, carrying err as a flash message.
func redirectBack(w http.ResponseWriter, r *http.Request, target string, err error) {
	http.Redirect(w, r, web.WithFlash(target, err), http.StatusSeeOther)
}
