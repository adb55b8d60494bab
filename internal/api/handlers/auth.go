package handlers

import (
	"net/http"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/api/validate"
	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
	TM    *auth.TokenManager
}

func NewAuthHandler(us *services.UserService, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: us, TM: tm}
}

type tokenResp struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         models.User `json:"user"`
}

func (h *AuthHandler) issue(w http.ResponseWriter, u models.User) {
	access, refresh, exp, err := h.TM.GeneratePair(u.ID, string(u.Role))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "token_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		User:         u,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		Institution string `json:"institution"`
	}
	if !decode(w, r, &req) {
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("name", req.Name),
		validate.Required("email", req.Email),
		validate.Email("email", req.Email),
		validate.Required("password", req.Password),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", errs)
		return
	}

	u, err := h.Users.Register(r.Context(), req.Name, req.Email, req.Password, req.Institution)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	h.issue(w, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	h.issue(w, u)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required", nil)
		return
	}
	claims, isRefresh, err := h.TM.ParseAny(req.RefreshToken)
	if err != nil || !isRefresh {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token", nil)
		return
	}

	// re-load so a deactivated account cannot rotate tokens forever
	u, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token", nil)
		return
	}
	if !u.IsActive {
		httpx.WriteServiceError(w, services.ErrAccountDisabled)
		return
	}
	h.issue(w, u)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), actor(r).ID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}
