package httpapi

import (
	"net/http"

	"github.com/goliatone/go-transfers/components/web"
)

func (h *Handlers) HandleSessionState(w http.ResponseWriter, r *http.Request, client *web.Client) {
	writeJSON(w, http.StatusOK, client.State())
}

func (h *Handlers) HandleSessionLogin(w http.ResponseWriter, r *http.Request, client *web.Client) {
	var payload web.LoginRequest
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.App.Login(r.Context(), client, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setCookie(w, client)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) HandleSessionRegister(w http.ResponseWriter, r *http.Request, client *web.Client) {
	var payload web.RegisterRequest
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.App.Register(r.Context(), client, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setCookie(w, client)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) HandleAdminLogin(w http.ResponseWriter, r *http.Request, client *web.Client) {
	var payload web.LoginRequest
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.App.AdminLogin(r.Context(), client, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setCookie(w, client)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request, client *web.Client) {
	if err := h.App.Logout(r.Context(), client); err != nil {
		writeError(w, err)
		return
	}
	h.setCookie(w, client)
	writeJSON(w, http.StatusOK, client.State())
}
