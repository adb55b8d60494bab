package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

// In-memory repositories mirroring the storage layer's guard semantics,
// so the services can be exercised without a database.

type fakeUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}}
}

func (f *fakeUsers) add(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", f.seq)
	}
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	for _, ex := range f.users {
		if ex.Email == u.Email {
			f.mu.Unlock()
			return models.User{}, ErrEmailTaken
		}
	}
	f.mu.Unlock()
	u.IsActive = true
	return f.add(u), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, _ repo.UserFilter) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeBooks struct {
	mu    sync.Mutex
	seq   int
	books map[string]models.Book
	users *fakeUsers
	txns  *fakeTxns
}

func newFakeBooks(users *fakeUsers, txns *fakeTxns) *fakeBooks {
	return &fakeBooks{books: map[string]models.Book{}, users: users, txns: txns}
}

func (f *fakeBooks) Create(_ context.Context, b models.Book) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("b-%d", f.seq)
	}
	if b.Status == "" {
		b.Status = models.BookPending
	}
	b.CreatedAt = time.Now()
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeBooks) GetByID(_ context.Context, id string) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	return b, nil
}

func (f *fakeBooks) List(_ context.Context, flt repo.BookFilter) ([]models.Book, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Book{}
	for _, b := range f.books {
		if flt.Status != "" && string(b.Status) != flt.Status {
			continue
		}
		if flt.DonorID != "" && b.DonorID != flt.DonorID {
			continue
		}
		if flt.BuyerID != "" && (b.BuyerID == nil || *b.BuyerID != flt.BuyerID) {
			continue
		}
		if flt.Subject != "" && b.Subject != flt.Subject {
			continue
		}
		if flt.Condition != "" && string(b.Condition) != flt.Condition {
			continue
		}
		if flt.Search != "" && !containsFold(b.Title, flt.Search) &&
			!containsFold(b.Author, flt.Search) && !containsFold(b.ISBN, flt.Search) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if flt.Limit <= 0 {
		return matched, total, nil
	}
	start := (flt.Page - 1) * flt.Limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + flt.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (f *fakeBooks) Subjects(_ context.Context) ([]string, error) {
	return []string{"physics", "mathematics"}, nil
}

func (f *fakeBooks) Update(_ context.Context, b models.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[b.ID]; !ok {
		return ErrNotFound
	}
	f.books[b.ID] = b
	return nil
}

func (f *fakeBooks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBooks) Verify(_ context.Context, bookID, verifierID string, donorCredit int) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	if !b.Status.CanVerify() {
		return models.Book{}, ErrInvalidTransition
	}
	b.Status = models.BookVerified
	b.VerifierID = &verifierID
	b.RejectionReason = ""
	f.books[bookID] = b

	f.users.mu.Lock()
	donor := f.users.users[b.DonorID]
	donor.RewardPoints += donorCredit
	f.users.users[b.DonorID] = donor
	f.users.mu.Unlock()

	f.txns.record(models.Transaction{
		Type: models.TxnDonation, UserID: b.DonorID, BookID: &b.ID,
		Amount: donorCredit, Status: models.TxnCompleted,
	})
	return b, nil
}

func (f *fakeBooks) Reject(_ context.Context, bookID, verifierID, reason string) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	if !b.Status.CanReject() {
		return models.Book{}, ErrInvalidTransition
	}
	b.Status = models.BookRejected
	b.VerifierID = &verifierID
	b.RejectionReason = reason
	f.books[bookID] = b
	return b, nil
}

func (f *fakeBooks) Purchase(_ context.Context, bookID, buyerID string, cost int) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	if !b.Status.CanPurchase() {
		return models.Book{}, ErrInvalidTransition
	}

	f.users.mu.Lock()
	buyer := f.users.users[buyerID]
	if buyer.RewardPoints < cost {
		f.users.mu.Unlock()
		return models.Book{}, ErrInsufficientPoints
	}
	buyer.RewardPoints -= cost
	f.users.users[buyerID] = buyer
	f.users.mu.Unlock()

	b.Status = models.BookSold
	b.BuyerID = &buyerID
	f.books[bookID] = b

	f.txns.record(models.Transaction{
		Type: models.TxnPurchase, UserID: buyerID, BookID: &b.ID,
		Amount: -cost, Status: models.TxnCompleted,
	})
	return b, nil
}

type fakeTxns struct {
	mu    sync.Mutex
	seq   int
	txns  []models.Transaction
	users *fakeUsers
}

func newFakeTxns(users *fakeUsers) *fakeTxns {
	return &fakeTxns{users: users}
}

func (f *fakeTxns) record(t models.Transaction) models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = fmt.Sprintf("t-%d", f.seq)
	t.CreatedAt = time.Now()
	f.txns = append(f.txns, t)
	return t
}

func (f *fakeTxns) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	return f.record(t), nil
}

func (f *fakeTxns) GetByID(_ context.Context, id string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Transaction{}, ErrNotFound
}

func (f *fakeTxns) List(_ context.Context, flt repo.TxnFilter) ([]models.Transaction, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.txns {
		if flt.UserID != "" && t.UserID != flt.UserID {
			continue
		}
		if flt.Type != "" && string(t.Type) != flt.Type {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeTxns) GetCompletedPointsPurchase(_ context.Context, sessionID string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.Type == models.TxnPointsPurchase && t.Status == models.TxnCompleted && t.CheckoutSessionID == sessionID {
			return t, nil
		}
	}
	return models.Transaction{}, ErrNotFound
}

func (f *fakeTxns) CreditPointsPurchase(ctx context.Context, t models.Transaction) (models.Transaction, int, error) {
	if existing, err := f.GetCompletedPointsPurchase(ctx, t.CheckoutSessionID); err == nil {
		u, _ := f.users.GetByID(ctx, existing.UserID)
		return existing, u.RewardPoints, nil
	}

	f.users.mu.Lock()
	u := f.users.users[t.UserID]
	u.RewardPoints += t.Amount
	f.users.users[t.UserID] = u
	balance := u.RewardPoints
	f.users.mu.Unlock()

	return f.record(t), balance, nil
}

type fakeNotifications struct {
	mu    sync.Mutex
	seq   int
	notes []models.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n.ID = fmt.Sprintf("n-%d", f.seq)
	n.CreatedAt = time.Now()
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeNotifications) List(_ context.Context, flt repo.NotificationFilter) ([]models.Notification, int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	unread := 0
	for _, n := range f.notes {
		if n.UserID != flt.UserID {
			continue
		}
		if !n.Read {
			unread++
		}
		if flt.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), unread, nil
}

func (f *fakeNotifications) SetRead(_ context.Context, id, userID string, read bool) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == id && n.UserID == userID {
			f.notes[i].Read = read
			return f.notes[i], nil
		}
	}
	return models.Notification{}, ErrNotFound
}

type fakeSupport struct {
	mu      sync.Mutex
	seq     int
	queries map[string]models.SupportQuery
}

func newFakeSupport() *fakeSupport {
	return &fakeSupport{queries: map[string]models.SupportQuery{}}
}

func (f *fakeSupport) Create(_ context.Context, q models.SupportQuery) (models.SupportQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	q.ID = fmt.Sprintf("q-%d", f.seq)
	q.Status = models.SupportOpen
	q.CreatedAt = time.Now()
	f.queries[q.ID] = q
	return q, nil
}

func (f *fakeSupport) GetByID(_ context.Context, id string) (models.SupportQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queries[id]
	if !ok {
		return models.SupportQuery{}, ErrNotFound
	}
	return q, nil
}

func (f *fakeSupport) List(_ context.Context, flt repo.SupportFilter) ([]models.SupportQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SupportQuery
	for _, q := range f.queries {
		if flt.UserID != "" && (q.UserID == nil || *q.UserID != flt.UserID) {
			continue
		}
		if flt.Status != "" && string(q.Status) != flt.Status {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeSupport) Update(_ context.Context, q models.SupportQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queries[q.ID]; !ok {
		return ErrNotFound
	}
	f.queries[q.ID] = q
	return nil
}

func (f *fakeSupport) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queries[id]; !ok {
		return ErrNotFound
	}
	delete(f.queries, id)
	return nil
}
