package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type TransactionHandler struct {
	Txns *services.TransactionService
}

func NewTransactionHandler(ts *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{Txns: ts}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	q := r.URL.Query()
	f := repo.TxnFilter{
		UserID: q.Get("user_id"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	}
	items, total, err := h.Txns.List(r.Context(), actor(r), f)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paginated(items, page, limit, total))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Txns.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}
