package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(us *services.UserService) *UserHandler {
	return &UserHandler{Users: us}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	f := repo.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}
	items, total, err := h.Users.List(r.Context(), f)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paginated(items, page, limit, total))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Users.AdminCreate(r.Context(), actor(r), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateUserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.Users.Update(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// UpdateProfile lets any authenticated user edit their own profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateUserInput
	if !decode(w, r, &in) {
		return
	}
	act := actor(r)
	u, err := h.Users.Update(r.Context(), act, act.ID, in)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}
