package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bookcycle/bookcycle-backend/internal/api/validate"
	"github.com/bookcycle/bookcycle-backend/internal/services"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError translates the service layer's sentinel errors into
// HTTP responses so handlers do not repeat the mapping.
func WriteServiceError(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	if errors.As(err, &verrs) {
		WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", verrs)
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
	case errors.Is(err, services.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "account_disabled", "account is deactivated", nil)
	case errors.Is(err, services.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
	case errors.Is(err, services.ErrSessionMismatch):
		WriteError(w, http.StatusForbidden, "session_mismatch", "checkout session belongs to another user", nil)
	case errors.Is(err, services.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "email_taken", "email is already registered", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientPoints):
		WriteError(w, http.StatusConflict, "insufficient_points", "not enough reward points", nil)
	case errors.Is(err, services.ErrSelfPurchase):
		WriteError(w, http.StatusConflict, "self_purchase", "you cannot buy your own donation", nil)
	case errors.Is(err, services.ErrPaymentNotComplete):
		WriteError(w, http.StatusBadRequest, "payment_not_complete", "payment has not completed", nil)
	case errors.Is(err, services.ErrGateway):
		WriteError(w, http.StatusBadGateway, "gateway_error", "payment gateway error", nil)
	case errors.Is(err, services.ErrAddressRequired):
		WriteError(w, http.StatusBadRequest, "requires_address", err.Error(), nil)
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNegativePoints),
		errors.Is(err, services.ErrInvalidMRP),
		errors.Is(err, services.ErrInvalidCondition),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrPointsOutOfRange),
		errors.Is(err, services.ErrSessionRequired),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPercentage):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
