// Package payment wraps the hosted-checkout provider behind a small
// interface so the services stay testable without network access.
package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
)

type CreateParams struct {
	UserID string
	Email  string
	Points int
}

// Session is the provider-neutral view of a checkout session.
type Session struct {
	ID              string
	URL             string
	Paid            bool
	UserID          string
	Points          int
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
}

type Gateway interface {
	CreateSession(ctx context.Context, p CreateParams) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
}

// StripeGateway sells reward points through Stripe Checkout at 1 point
// per INR.
type StripeGateway struct {
	baseURL string
}

func NewStripeGateway(secretKey, baseURL string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{baseURL: baseURL}
}

func (g *StripeGateway) CreateSession(ctx context.Context, p CreateParams) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("inr"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("BookCycle Reward Points"),
					Description: stripe.String(fmt.Sprintf("Add %d reward points to your account", p.Points)),
				},
				// smallest currency unit: paise
				UnitAmount: stripe.Int64(int64(p.Points) * 100),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:    stripe.String(g.baseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(g.baseURL + "/dashboard/student?payment=cancelled"),
		CustomerEmail: stripe.String(p.Email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", p.UserID)
	params.AddMetadata("points", strconv.Itoa(p.Points))
	params.AddMetadata("purpose", "reward_points")

	s, err := session.New(params)
	if err != nil {
		return Session{}, err
	}
	return fromStripe(s), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := session.Get(id, params)
	if err != nil {
		return Session{}, err
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) Session {
	out := Session{
		ID:          s.ID,
		URL:         s.URL,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		UserID:      s.Metadata["user_id"],
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
	}
	if pts, err := strconv.Atoi(s.Metadata["points"]); err == nil {
		out.Points = pts
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}
