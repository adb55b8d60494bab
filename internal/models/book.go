package models

import "time"

type BookStatus string

const (
	BookPending  BookStatus = "pending"
	BookVerified BookStatus = "verified"
	BookRejected BookStatus = "rejected"
	BookSold     BookStatus = "sold"
)

type BookCondition string

const (
	ConditionExcellent BookCondition = "excellent"
	ConditionGood      BookCondition = "good"
	ConditionFair      BookCondition = "fair"
	ConditionPoor      BookCondition = "poor"
)

func (c BookCondition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// CanVerify: pending books are verified, and a rejected book may be
// reconsidered back to verified. No other path reaches verified.
func (s BookStatus) CanVerify() bool { return s == BookPending || s == BookRejected }

func (s BookStatus) CanReject() bool { return s == BookPending }

func (s BookStatus) CanPurchase() bool { return s == BookVerified }

type Book struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	ISBN            string        `json:"isbn,omitempty"`
	Subject         string        `json:"subject"`
	MRP             int           `json:"mrp"`
	Condition       BookCondition `json:"condition"`
	Description     string        `json:"description,omitempty"`
	Images          []string      `json:"images"`
	Status          BookStatus    `json:"status"`
	DonorID         string        `json:"donor_id"`
	VerifierID      *string       `json:"verifier_id,omitempty"`
	BuyerID         *string       `json:"buyer_id,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
