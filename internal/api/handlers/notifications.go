package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(ns *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: ns}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	items, total, unread, err := h.Notifications.List(r.Context(), actor(r).ID, unreadOnly, page, limit)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		listResponse
		Unread int `json:"unread"`
	}{paginated(items, page, limit, total), unread})
}

func (h *NotificationHandler) SetRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Read *bool `json:"read"`
	}
	if !decode(w, r, &req) {
		return
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}
	n, err := h.Notifications.SetRead(r.Context(), actor(r).ID, chi.URLParam(r, "id"), read)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}
