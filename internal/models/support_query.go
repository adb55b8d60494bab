package models

import "time"

type SupportStatus string

const (
	SupportOpen       SupportStatus = "open"
	SupportInProgress SupportStatus = "in_progress"
	SupportResolved   SupportStatus = "resolved"
	SupportClosed     SupportStatus = "closed"
)

func (s SupportStatus) Valid() bool {
	switch s {
	case SupportOpen, SupportInProgress, SupportResolved, SupportClosed:
		return true
	}
	return false
}

type SupportCategory string

const (
	CategoryTechnical  SupportCategory = "technical"
	CategoryAccount    SupportCategory = "account"
	CategoryBookIssues SupportCategory = "book_issues"
	CategoryPayments   SupportCategory = "payments"
	CategoryGeneral    SupportCategory = "general"
	CategoryComplaint  SupportCategory = "complaint"
)

func (c SupportCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryAccount, CategoryBookIssues,
		CategoryPayments, CategoryGeneral, CategoryComplaint:
		return true
	}
	return false
}

type SupportPriority string

const (
	PriorityLow    SupportPriority = "low"
	PriorityMedium SupportPriority = "medium"
	PriorityHigh   SupportPriority = "high"
	PriorityUrgent SupportPriority = "urgent"
)

func (p SupportPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// SupportQuery may be anonymous, so UserID is optional.
type SupportQuery struct {
	ID            string          `json:"id"`
	UserID        *string         `json:"user_id,omitempty"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Subject       string          `json:"subject"`
	Message       string          `json:"message"`
	Category      SupportCategory `json:"category"`
	Priority      SupportPriority `json:"priority"`
	Status        SupportStatus   `json:"status"`
	AdminResponse string          `json:"admin_response,omitempty"`
	AdminID       *string         `json:"admin_id,omitempty"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
