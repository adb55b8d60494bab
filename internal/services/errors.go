package services

import "errors"

// Sentinel errors shared by services and repositories. httpx maps them
// to status codes in one place.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidTransition  = errors.New("invalid book status transition")
	ErrInsufficientPoints = errors.New("insufficient reward points")
	ErrSelfPurchase       = errors.New("cannot purchase your own donated book")
	ErrAddressRequired    = errors.New("address information is required for payment processing")
	ErrPaymentNotComplete = errors.New("payment not completed")
	ErrSessionMismatch    = errors.New("payment session does not belong to caller")
	ErrGateway            = errors.New("payment gateway error")
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidRole      = errors.New("invalid role")
	ErrNegativePoints   = errors.New("reward points cannot be negative")
)

var (
	ErrInvalidMRP       = errors.New("mrp must be a positive number")
	ErrInvalidCondition = errors.New("invalid book condition")
	ErrReasonRequired   = errors.New("rejection reason is required")
)

var (
	ErrPointsOutOfRange = errors.New("invalid points amount, must be between 1 and 10000")
	ErrSessionRequired  = errors.New("session id is required")
)

var (
	ErrInvalidCategory   = errors.New("invalid support category")
	ErrInvalidPriority   = errors.New("invalid support priority")
	ErrInvalidStatus     = errors.New("invalid support status")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
)
