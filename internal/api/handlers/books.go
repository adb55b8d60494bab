package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/api/validate"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type BookHandler struct {
	Books *services.BookService
}

func NewBookHandler(bs *services.BookService) *BookHandler {
	return &BookHandler{Books: bs}
}

// List is the storefront. It is open to guests, and every filter is
// applied exactly as requested; the filters compose freely.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	q := r.URL.Query()
	f := repo.BookFilter{
		Status:    q.Get("status"),
		DonorID:   q.Get("donor_id"),
		BuyerID:   q.Get("buyer_id"),
		Subject:   q.Get("subject"),
		Condition: q.Get("condition"),
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
	}

	items, total, err := h.Books.List(r.Context(), f)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paginated(items, page, limit, total))
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateBookInput
	if !decode(w, r, &in) {
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("title", in.Title),
		validate.Required("author", in.Author),
		validate.Required("subject", in.Subject),
		validate.Required("condition", in.Condition),
		validate.MinInt("mrp", int64(in.MRP), 1),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if !models.BookCondition(in.Condition).Valid() && in.Condition != "" {
		errs = append(errs, validate.ErrField{Field: "condition", Msg: "must be one of excellent, good, fair, poor"})
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", errs)
		return
	}

	b, err := h.Books.Create(r.Context(), actor(r), in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateBookInput
	if !decode(w, r, &in) {
		return
	}
	b, err := h.Books.Update(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.Verify(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Books.Reject(r.Context(), actor(r), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.Purchase(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Books.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
