package httpapi

import (
	"net/http"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/admin/commands"
	"github.com/goliatone/go-transfers/components/admin/queries"
	"github.com/goliatone/go-transfers/components/web"
)

func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	result, err := h.App.Queries.Stats.Query(r.Context(), struct{}{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	overview, err := h.App.Overview(r.Context(), h.App.Preferences())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handlers) HandlePreferences(w http.ResponseWriter, _ *http.Request, _ *web.Client) {
	writeJSON(w, http.StatusOK, h.App.Preferences())
}

func (h *Handlers) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	var payload commands.UpdatePreferencesInput
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if err := h.App.Commands.Preferences.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.App.Preferences())
}

func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	query := r.URL.Query()
	result, err := h.App.Queries.List.Query(r.Context(), queries.ListInput{
		Collection: r.PathValue("collection"),
		Status:     query.Get("status"),
		Search:     query.Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handlers) HandleUpdateStatus(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	var payload statusPayload
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	input := commands.UpdateStatusInput{
		Collection: r.PathValue("collection"),
		ID:         r.PathValue("id"),
		Status:     payload.Status,
	}
	if err := h.App.Commands.UpdateStatus.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, input)
}

func (h *Handlers) HandleVerifyDriver(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	input := commands.VerifyDriverInput{DriverID: r.PathValue("id")}
	if err := h.App.Commands.VerifyDriver.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified", "id": input.DriverID})
}

func (h *Handlers) HandleAddPromotion(w http.ResponseWriter, r *http.Request, _ *web.Client) {
	var payload admin.PromotionInput
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	var created admin.Promotion
	if err := h.App.Commands.AddPromotion.Execute(r.Context(), commands.AddPromotionInput{Promotion: payload, Result: &created}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
