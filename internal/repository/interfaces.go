package repository

import (
	"context"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/models"
)

type UserFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type BookFilter struct {
	Status    string
	DonorID   string
	BuyerID   string
	Subject   string
	Condition string
	Search    string
	Page      int
	Limit     int
}

type TxnFilter struct {
	UserID string
	Type   string
	Status string
	Page   int
	Limit  int
}

type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	Limit      int
}

type SupportFilter struct {
	UserID   string
	Status   string
	Category string
	Priority string
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, int, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

type Books interface {
	Create(ctx context.Context, b models.Book) (models.Book, error)
	GetByID(ctx context.Context, id string) (models.Book, error)
	List(ctx context.Context, f BookFilter) ([]models.Book, int, error)
	Subjects(ctx context.Context) ([]string, error)
	Update(ctx context.Context, b models.Book) error
	Delete(ctx context.Context, id string) error

	// Atomic flows. Guards are re-evaluated inside the transaction, so a
	// concurrent caller losing the race gets a typed error instead of a
	// double write.
	Verify(ctx context.Context, bookID, verifierID string, donorCredit int) (models.Book, error)
	Reject(ctx context.Context, bookID, verifierID, reason string) (models.Book, error)
	Purchase(ctx context.Context, bookID, buyerID string, cost int) (models.Book, error)
}

type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	List(ctx context.Context, f TxnFilter) ([]models.Transaction, int, error)
	// GetCompletedPointsPurchase is the idempotency lookup for payment
	// verification, keyed by the checkout session id.
	GetCompletedPointsPurchase(ctx context.Context, sessionID string) (models.Transaction, error)
	// CreditPointsPurchase credits the user and inserts the completed
	// ledger row in one transaction. Returns the new balance.
	CreditPointsPurchase(ctx context.Context, t models.Transaction) (models.Transaction, int, error)
}

type Notifications interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	List(ctx context.Context, f NotificationFilter) (items []models.Notification, total, unread int, err error)
	SetRead(ctx context.Context, id, userID string, read bool) (models.Notification, error)
}

type SupportQueries interface {
	Create(ctx context.Context, q models.SupportQuery) (models.SupportQuery, error)
	GetByID(ctx context.Context, id string) (models.SupportQuery, error)
	List(ctx context.Context, f SupportFilter) ([]models.SupportQuery, error)
	Update(ctx context.Context, q models.SupportQuery) error
	Delete(ctx context.Context, id string) error
}

type Overview struct {
	TotalUsers        int `json:"total_users"`
	TotalStudents     int `json:"total_students"`
	TotalManagers     int `json:"total_managers"`
	TotalBooks        int `json:"total_books"`
	PendingBooks      int `json:"pending_books"`
	VerifiedBooks     int `json:"verified_books"`
	SoldBooks         int `json:"sold_books"`
	RejectedBooks     int `json:"rejected_books"`
	TotalTransactions int `json:"total_transactions"`
	PointsAwarded     int `json:"points_awarded"`
	PointsSpent       int `json:"points_spent"`
}

type RecentActivity struct {
	Users        int `json:"users"`
	Books        int `json:"books"`
	Transactions int `json:"transactions"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

type TrendPoint struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Stats interface {
	Overview(ctx context.Context) (Overview, error)
	RecentActivity(ctx context.Context, since time.Time) (RecentActivity, error)
	BooksBySubject(ctx context.Context, limit int) ([]SubjectCount, error)
	BooksTrend(ctx context.Context, since time.Time) ([]TrendPoint, error)
	BooksByStatus(ctx context.Context) (map[string]int, error)
	TopStudents(ctx context.Context, limit int) ([]models.User, error)
}
