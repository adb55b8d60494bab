package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookcycle/bookcycle-backend/internal/metrics"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/payment"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

const (
	MinPointsPurchase = 1
	MaxPointsPurchase = 10000
)

type PaymentService struct {
	users   repo.Users
	trx     repo.Transactions
	gateway payment.Gateway
}

func NewPaymentService(users repo.Users, trx repo.Transactions, gw payment.Gateway) *PaymentService {
	return &PaymentService{users: users, trx: trx, gateway: gw}
}

type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout opens a hosted checkout session selling reward points
// at 1 point per INR. Students only, and their profile must carry a full
// address and phone number first.
func (s *PaymentService) CreateCheckout(ctx context.Context, actor Actor, points int) (CheckoutResult, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if u.Role != models.RoleStudent {
		return CheckoutResult{}, ErrForbidden
	}
	if !u.CanPay() {
		return CheckoutResult{}, ErrAddressRequired
	}
	if points < MinPointsPurchase || points > MaxPointsPurchase {
		return CheckoutResult{}, ErrPointsOutOfRange
	}

	sess, err := s.gateway.CreateSession(ctx, payment.CreateParams{
		UserID: u.ID,
		Email:  u.Email,
		Points: points,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

type VerifyResult struct {
	AlreadyProcessed bool `json:"already_processed"`
	PointsAdded      int  `json:"points_added"`
	Balance          int  `json:"balance"`
}

// VerifyPayment credits the session's points exactly once. Repeat calls
// with the same session id return the current balance without a second
// credit; the storage layer's unique index closes the race between
// concurrent first calls.
func (s *PaymentService) VerifyPayment(ctx context.Context, actor Actor, sessionID string) (VerifyResult, error) {
	if sessionID == "" {
		return VerifyResult{}, ErrSessionRequired
	}

	existing, err := s.trx.GetCompletedPointsPurchase(ctx, sessionID)
	switch {
	case err == nil:
		if existing.UserID != actor.ID {
			return VerifyResult{}, ErrSessionMismatch
		}
		u, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return VerifyResult{}, err
		}
		return VerifyResult{AlreadyProcessed: true, Balance: u.RewardPoints}, nil
	case !errors.Is(err, ErrNotFound):
		return VerifyResult{}, err
	}

	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !sess.Paid {
		return VerifyResult{}, ErrPaymentNotComplete
	}
	if sess.UserID != actor.ID {
		return VerifyResult{}, ErrSessionMismatch
	}
	if sess.Points < MinPointsPurchase || sess.Points > MaxPointsPurchase {
		return VerifyResult{}, ErrPointsOutOfRange
	}

	_, balance, err := s.trx.CreditPointsPurchase(ctx, models.Transaction{
		Type:              models.TxnPointsPurchase,
		UserID:            actor.ID,
		Amount:            sess.Points,
		Status:            models.TxnCompleted,
		CheckoutSessionID: sess.ID,
		PaymentIntentID:   sess.PaymentIntentID,
		Description:       fmt.Sprintf("Added %d reward points via checkout", sess.Points),
		Metadata: map[string]any{
			"amount_paid": float64(sess.AmountTotal) / 100,
			"currency":    sess.Currency,
		},
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return VerifyResult{}, err
	}
	metrics.TransactionsTotal.WithLabelValues("points_purchase").Inc()
	return VerifyResult{PointsAdded: sess.Points, Balance: balance}, nil
}
