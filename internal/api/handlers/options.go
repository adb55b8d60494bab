package handlers

import (
	"net/http"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

// OptionsHandler serves the static form vocabularies plus the live
// subject list so the client does not hardcode them.
type OptionsHandler struct {
	Books *services.BookService
	Stats *services.StatsService
}

func NewOptionsHandler(bs *services.BookService, ss *services.StatsService) *OptionsHandler {
	return &OptionsHandler{Books: bs, Stats: ss}
}

var bookConditions = []models.BookCondition{
	models.ConditionExcellent, models.ConditionGood, models.ConditionFair, models.ConditionPoor,
}

var bookStatuses = []models.BookStatus{
	models.BookPending, models.BookVerified, models.BookRejected, models.BookSold,
}

func (h *OptionsHandler) Options(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "subjects":
		subjects, err := h.Books.Subjects(r.Context())
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
	case "conditions":
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"conditions": bookConditions})
	case "book-stats":
		byStatus, err := h.Stats.BooksByStatus(r.Context())
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"books_by_status": byStatus})
	default:
		subjects, err := h.Books.Subjects(r.Context())
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		byStatus, err := h.Stats.BooksByStatus(r.Context())
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"subjects":        subjects,
			"conditions":      bookConditions,
			"statuses":        bookStatuses,
			"books_by_status": byStatus,
		})
	}
}
