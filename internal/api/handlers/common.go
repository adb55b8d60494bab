package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/middleware"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_json", "invalid request body", nil)
		return false
	}
	return true
}

func actor(r *http.Request) services.Actor {
	id, _ := middleware.IdentityFrom(r.Context())
	return services.Actor{ID: id.UserID, Role: id.Role}
}

// optionalActor returns nil for guest requests that went through the
// optional auth middleware.
func optionalActor(r *http.Request) *services.Actor {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return nil
	}
	return &services.Actor{ID: id.UserID, Role: id.Role}
}

func pageLimit(r *http.Request) (int, int) {
	page, limit := 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type listResponse struct {
	Items      interface{} `json:"items"`
	Pagination pagination  `json:"pagination"`
}

func paginated(items interface{}, page, limit, total int) listResponse {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return listResponse{Items: items, Pagination: pagination{Page: page, Limit: limit, Total: total, Pages: pages}}
}
