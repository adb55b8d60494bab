package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/config"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/bookcycle/bookcycle-backend/internal/worker"
)

type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]models.User
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return models.User{}, services.ErrEmailTaken
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.IsActive = true
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, services.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, services.ErrNotFound
}

func (m *memUsers) List(_ context.Context, _ repo.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (m *memUsers) ListByRole(_ context.Context, _ models.Role) ([]models.User, error) {
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type memBooks struct {
	mu    sync.Mutex
	seq   int
	books map[string]models.Book
}

func (m *memBooks) Create(_ context.Context, b models.Book) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("b-%d", m.seq)
	if b.Status == "" {
		b.Status = models.BookPending
	}
	m.books[b.ID] = b
	return b, nil
}

func (m *memBooks) GetByID(_ context.Context, id string) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return models.Book{}, services.ErrNotFound
	}
	return b, nil
}

func (m *memBooks) List(_ context.Context, f repo.BookFilter) ([]models.Book, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.Book{}
	for _, b := range m.books {
		switch {
		case f.Status != "" && string(b.Status) != f.Status:
		case f.DonorID != "" && b.DonorID != f.DonorID:
		case f.BuyerID != "" && (b.BuyerID == nil || *b.BuyerID != f.BuyerID):
		case f.Subject != "" && b.Subject != f.Subject:
		case f.Condition != "" && string(b.Condition) != f.Condition:
		case f.Search != "" && !bookMatches(b, f.Search):
		default:
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func bookMatches(b models.Book, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.ISBN), q)
}

func (m *memBooks) Subjects(_ context.Context) ([]string, error) { return nil, nil }

func (m *memBooks) Update(_ context.Context, b models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *memBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

func (m *memBooks) Verify(_ context.Context, bookID, verifierID string, _ int) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[bookID]
	if !ok {
		return models.Book{}, services.ErrNotFound
	}
	if !b.Status.CanVerify() {
		return models.Book{}, services.ErrInvalidTransition
	}
	b.Status = models.BookVerified
	b.VerifierID = &verifierID
	m.books[bookID] = b
	return b, nil
}

func (m *memBooks) Reject(_ context.Context, bookID, verifierID, reason string) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.books[bookID]
	b.Status = models.BookRejected
	b.VerifierID = &verifierID
	b.RejectionReason = reason
	m.books[bookID] = b
	return b, nil
}

func (m *memBooks) Purchase(_ context.Context, bookID, buyerID string, _ int) (models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.books[bookID]
	b.Status = models.BookSold
	b.BuyerID = &buyerID
	m.books[bookID] = b
	return b, nil
}

type memNotifications struct{}

func (memNotifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	return n, nil
}

func (memNotifications) List(_ context.Context, _ repo.NotificationFilter) ([]models.Notification, int, int, error) {
	return nil, 0, 0, nil
}

func (memNotifications) SetRead(_ context.Context, _, _ string, _ bool) (models.Notification, error) {
	return models.Notification{}, services.ErrNotFound
}

type testServer struct {
	srv   *httptest.Server
	users *memUsers
	books *memBooks
	tm    *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := &memUsers{users: map[string]models.User{}}
	books := &memBooks{books: map[string]models.Book{}}
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("test-access", "test-refresh", 15*time.Minute, time.Hour)
	notifSvc := services.NewNotificationService(memNotifications{}, users, wp)

	h := NewRouter(Deps{
		Cfg:           config.Config{Env: "test", RateRPS: 0},
		TM:            tm,
		Users:         services.NewUserService(users),
		Books:         services.NewBookService(books, notifSvc),
		Notifications: notifSvc,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, users: users, books: books, tm: tm}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	access, _, _, err := ts.tm.GeneratePair(u.ID, string(u.Role))
	require.NoError(t, err)
	return access
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Asha", "email": "asha@iitb.ac.in", "password": "sekrit1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reg struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	decodeBody(t, resp, &reg)
	require.NotEmpty(t, reg.AccessToken)
	require.Equal(t, models.RoleStudent, reg.User.Role)

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "asha@iitb.ac.in", "password": "wrong",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/auth/me", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	decodeBody(t, resp, &me)
	require.Equal(t, "asha@iitb.ac.in", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "", "email": "", "password": "",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type bookPage struct {
	Items      []models.Book `json:"items"`
	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

func TestGuestBookFiltersHonored(t *testing.T) {
	ts := newTestServer(t)
	v := "mgr"
	ts.books.books["b-p"] = models.Book{ID: "b-p", Title: "pending one", Status: models.BookPending}
	ts.books.books["b-v"] = models.Book{ID: "b-v", Title: "verified one", Status: models.BookVerified, VerifierID: &v}

	resp := ts.do(t, http.MethodGet, "/api/v1/books?status=pending", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out bookPage
	decodeBody(t, resp, &out)
	require.Equal(t, 1, out.Pagination.Total)
	require.Len(t, out.Items, 1)
	require.Equal(t, models.BookPending, out.Items[0].Status)

	resp = ts.do(t, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = bookPage{}
	decodeBody(t, resp, &out)
	require.Equal(t, 2, out.Pagination.Total)
	require.Len(t, out.Items, 2)
}

func TestBookListPagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("m-%02d", i)
		ts.books.books[id] = models.Book{
			ID: id, Title: "Calculus Vol " + id, Subject: "mathematics",
			Condition: models.ConditionGood, Status: models.BookVerified,
		}
	}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p-%02d", i)
		ts.books.books[id] = models.Book{
			ID: id, Title: "Optics " + id, Subject: "physics",
			Condition: models.ConditionFair, Status: models.BookVerified,
		}
	}
	ts.books.books["m-pend"] = models.Book{
		ID: "m-pend", Title: "Algebra", Subject: "mathematics", Status: models.BookPending,
	}

	resp := ts.do(t, http.MethodGet, "/api/v1/books?status=verified&subject=mathematics&page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out bookPage
	decodeBody(t, resp, &out)
	require.Equal(t, 12, out.Pagination.Total)
	require.Equal(t, 2, out.Pagination.Pages)
	require.Equal(t, 2, out.Pagination.Page)
	require.Equal(t, 10, out.Pagination.Limit)
	require.Len(t, out.Items, 2)
	for _, b := range out.Items {
		require.Equal(t, models.BookVerified, b.Status)
		require.Equal(t, "mathematics", b.Subject)
	}

	resp = ts.do(t, http.MethodGet, "/api/v1/books?status=verified&subject=mathematics&page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = bookPage{}
	decodeBody(t, resp, &out)
	require.Len(t, out.Items, 10)
	for _, b := range out.Items {
		require.Equal(t, "mathematics", b.Subject)
	}
}

func TestEmptyBookListSerializesAsArray(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/books?subject=astronomy", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.JSONEq(t, `[]`, string(raw["items"]))
}

func TestDonationRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/books", "", map[string]any{
		"title": "X", "author": "Y", "subject": "physics", "mrp": 100, "condition": "good",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDonateAndVerifyFlow(t *testing.T) {
	ts := newTestServer(t)
	student, err := ts.users.Create(context.Background(), models.User{Name: "Asha", Email: "a@x.in", Role: models.RoleStudent})
	require.NoError(t, err)
	mgr, err := ts.users.Create(context.Background(), models.User{Name: "Meera", Email: "m@x.in", Role: models.RoleManager})
	require.NoError(t, err)

	resp := ts.do(t, http.MethodPost, "/api/v1/books", ts.tokenFor(t, student), map[string]any{
		"title": "Concepts of Physics", "author": "H.C. Verma", "subject": "physics",
		"mrp": 500, "condition": "good",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Book
	decodeBody(t, resp, &created)
	require.Equal(t, models.BookPending, created.Status)
	require.Equal(t, student.ID, created.DonorID)

	// students cannot reach the moderation routes
	resp = ts.do(t, http.MethodPost, "/api/v1/books/"+created.ID+"/verify", ts.tokenFor(t, student), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/v1/books/"+created.ID+"/verify", ts.tokenFor(t, mgr), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verified models.Book
	decodeBody(t, resp, &verified)
	require.Equal(t, models.BookVerified, verified.Status)
}

func TestAdminRoutesForbiddenForManagers(t *testing.T) {
	ts := newTestServer(t)
	mgr, err := ts.users.Create(context.Background(), models.User{Name: "Meera", Email: "m@x.in", Role: models.RoleManager})
	require.NoError(t, err)

	resp := ts.do(t, http.MethodPost, "/api/v1/users", ts.tokenFor(t, mgr), map[string]string{
		"name": "X", "email": "x@x.in", "password": "sekrit1", "role": "manager",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
