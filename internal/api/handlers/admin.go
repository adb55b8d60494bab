package handlers

import (
	"net/http"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type AdminHandler struct {
	Stats *services.StatsService
}

func NewAdminHandler(ss *services.StatsService) *AdminHandler {
	return &AdminHandler{Stats: ss}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Stats.Dashboard(r.Context(), actor(r))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Settings(actor(r))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateSettingsInput
	if !decode(w, r, &in) {
		return
	}
	s, err := h.Stats.UpdateSettings(actor(r), in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}
