package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/payment"
)

type fakeGateway struct {
	sessions map[string]payment.Session
	created  []payment.CreateParams
	fail     bool
}

func (g *fakeGateway) CreateSession(_ context.Context, p payment.CreateParams) (payment.Session, error) {
	if g.fail {
		return payment.Session{}, errors.New("stripe is down")
	}
	g.created = append(g.created, p)
	s := payment.Session{
		ID:     "cs_test_1",
		URL:    "https://checkout.example.com/cs_test_1",
		UserID: p.UserID,
		Points: p.Points,
	}
	if g.sessions == nil {
		g.sessions = map[string]payment.Session{}
	}
	g.sessions[s.ID] = s
	return s, nil
}

func (g *fakeGateway) GetSession(_ context.Context, id string) (payment.Session, error) {
	s, ok := g.sessions[id]
	if !ok {
		return payment.Session{}, errors.New("no such session")
	}
	return s, nil
}

func payFixture(t *testing.T) (*fakeUsers, *fakeTxns, *fakeGateway, *PaymentService, models.User) {
	t.Helper()
	users := newFakeUsers()
	txns := newFakeTxns(users)
	gw := &fakeGateway{}
	student := users.add(models.User{
		Name: "Asha", Email: "asha@iitb.ac.in", Role: models.RoleStudent, IsActive: true,
		Phone: "+919800000000",
		Address: models.Address{
			Line1: "Hostel 3", City: "Mumbai", State: "MH", PostalCode: "400076", Country: "IN",
		},
	})
	return users, txns, gw, NewPaymentService(users, txns, gw), student
}

func TestCreateCheckout(t *testing.T) {
	_, _, gw, svc, student := payFixture(t)

	res, err := svc.CreateCheckout(context.Background(), Actor{ID: student.ID, Role: models.RoleStudent}, 250)
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", res.SessionID)
	require.NotEmpty(t, res.URL)
	require.Len(t, gw.created, 1)
	require.Equal(t, 250, gw.created[0].Points)
}

func TestCreateCheckoutRequiresAddress(t *testing.T) {
	users, txns, gw, _, _ := payFixture(t)
	bare := users.add(models.User{Name: "Ravi", Email: "ravi@iitb.ac.in", Role: models.RoleStudent, IsActive: true})
	svc := NewPaymentService(users, txns, gw)

	_, err := svc.CreateCheckout(context.Background(), Actor{ID: bare.ID, Role: models.RoleStudent}, 100)
	require.ErrorIs(t, err, ErrAddressRequired)
}

func TestCreateCheckoutPointsRange(t *testing.T) {
	_, _, _, svc, student := payFixture(t)
	act := Actor{ID: student.ID, Role: models.RoleStudent}

	_, err := svc.CreateCheckout(context.Background(), act, 0)
	require.ErrorIs(t, err, ErrPointsOutOfRange)

	_, err = svc.CreateCheckout(context.Background(), act, 10001)
	require.ErrorIs(t, err, ErrPointsOutOfRange)
}

func TestCreateCheckoutGatewayFailure(t *testing.T) {
	_, _, gw, svc, student := payFixture(t)
	gw.fail = true

	_, err := svc.CreateCheckout(context.Background(), Actor{ID: student.ID, Role: models.RoleStudent}, 100)
	require.ErrorIs(t, err, ErrGateway)
}

func TestVerifyPaymentCreditsOnce(t *testing.T) {
	users, _, gw, svc, student := payFixture(t)
	act := Actor{ID: student.ID, Role: models.RoleStudent}

	res, err := svc.CreateCheckout(context.Background(), act, 300)
	require.NoError(t, err)

	// simulate the hosted checkout completing
	s := gw.sessions[res.SessionID]
	s.Paid = true
	s.PaymentIntentID = "pi_1"
	s.AmountTotal = 30000
	gw.sessions[res.SessionID] = s

	first, err := svc.VerifyPayment(context.Background(), act, res.SessionID)
	require.NoError(t, err)
	require.False(t, first.AlreadyProcessed)
	require.Equal(t, 300, first.PointsAdded)
	require.Equal(t, 300, first.Balance)

	second, err := svc.VerifyPayment(context.Background(), act, res.SessionID)
	require.NoError(t, err)
	require.True(t, second.AlreadyProcessed)
	require.Equal(t, 300, second.Balance)

	u, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, 300, u.RewardPoints)
}

type flakyTxns struct {
	*fakeTxns
	lookupErr error
}

func (f *flakyTxns) GetCompletedPointsPurchase(ctx context.Context, sessionID string) (models.Transaction, error) {
	if f.lookupErr != nil {
		return models.Transaction{}, f.lookupErr
	}
	return f.fakeTxns.GetCompletedPointsPurchase(ctx, sessionID)
}

func TestVerifyPaymentLookupFailureSurfaces(t *testing.T) {
	users, txns, gw, _, student := payFixture(t)
	boom := errors.New("connection reset")
	flaky := &flakyTxns{fakeTxns: txns, lookupErr: boom}
	svc := NewPaymentService(users, flaky, gw)
	act := Actor{ID: student.ID, Role: models.RoleStudent}

	res, err := svc.CreateCheckout(context.Background(), act, 100)
	require.NoError(t, err)
	s := gw.sessions[res.SessionID]
	s.Paid = true
	gw.sessions[res.SessionID] = s

	_, err = svc.VerifyPayment(context.Background(), act, res.SessionID)
	require.ErrorIs(t, err, boom)

	// nothing was credited on the failed lookup
	u, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.Zero(t, u.RewardPoints)
}

func TestVerifyPaymentUnpaidSession(t *testing.T) {
	_, _, _, svc, student := payFixture(t)
	act := Actor{ID: student.ID, Role: models.RoleStudent}

	res, err := svc.CreateCheckout(context.Background(), act, 100)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), act, res.SessionID)
	require.ErrorIs(t, err, ErrPaymentNotComplete)
}

func TestVerifyPaymentWrongUser(t *testing.T) {
	users, _, gw, svc, student := payFixture(t)
	other := users.add(models.User{Name: "Ravi", Email: "ravi@iitb.ac.in", Role: models.RoleStudent, IsActive: true})

	res, err := svc.CreateCheckout(context.Background(), Actor{ID: student.ID, Role: models.RoleStudent}, 100)
	require.NoError(t, err)
	s := gw.sessions[res.SessionID]
	s.Paid = true
	gw.sessions[res.SessionID] = s

	_, err = svc.VerifyPayment(context.Background(), Actor{ID: other.ID, Role: models.RoleStudent}, res.SessionID)
	require.ErrorIs(t, err, ErrSessionMismatch)
}

func TestVerifyPaymentRequiresSessionID(t *testing.T) {
	_, _, _, svc, student := payFixture(t)

	_, err := svc.VerifyPayment(context.Background(), Actor{ID: student.ID, Role: models.RoleStudent}, "")
	require.ErrorIs(t, err, ErrSessionRequired)
}
