package models

import "time"

type TransactionType string

const (
	TxnDonation       TransactionType = "donation"
	TxnPurchase       TransactionType = "purchase"
	TxnPointsPurchase TransactionType = "points_purchase"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. Amount is signed from the
// owning user's point of view: donation and points_purchase credit,
// purchase debits.
type Transaction struct {
	ID                string            `json:"id"`
	Type              TransactionType   `json:"type"`
	UserID            string            `json:"user_id"`
	BookID            *string           `json:"book_id,omitempty"`
	Amount            int               `json:"amount"`
	Status            TransactionStatus `json:"status"`
	CheckoutSessionID string            `json:"checkout_session_id,omitempty"`
	PaymentIntentID   string            `json:"payment_intent_id,omitempty"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
