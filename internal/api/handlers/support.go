package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/api/validate"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type SupportHandler struct {
	Support *services.SupportService
}

func NewSupportHandler(ss *services.SupportService) *SupportHandler {
	return &SupportHandler{Support: ss}
}

// Create accepts guest submissions; the contact form is public.
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateSupportInput
	if !decode(w, r, &in) {
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("name", in.Name),
		validate.Required("email", in.Email),
		validate.Required("subject", in.Subject),
		validate.Required("message", in.Message),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", errs)
		return
	}

	userID := ""
	if act := optionalActor(r); act != nil {
		userID = act.ID
	}
	q, err := h.Support.Create(r.Context(), userID, in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, q)
}

func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.SupportFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Priority: q.Get("priority"),
	}
	items, err := h.Support.List(r.Context(), optionalActor(r), f)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *SupportHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateSupportInput
	if !decode(w, r, &in) {
		return
	}
	q, err := h.Support.Update(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, q)
}

func (h *SupportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Support.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
