package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnCols = `id, type, user_id, book_id, amount, status,
	checkout_session_id, payment_intent_id, description, metadata, created_at, updated_at`

func scanTxn(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Type, &t.UserID, &t.BookID, &t.Amount, &t.Status,
		&t.CheckoutSessionID, &t.PaymentIntentID, &t.Description, &t.Metadata,
		&t.CreatedAt, &t.UpdatedAt)
	return t, mapErr(err)
}

func (r *transactionsRepo) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return scanTxn(r.pool.QueryRow(ctx,
		`INSERT INTO transactions(id, type, user_id, book_id, amount, status,
		   checkout_session_id, payment_intent_id, description, metadata)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING `+txnCols,
		t.ID, t.Type, t.UserID, t.BookID, t.Amount, t.Status,
		t.CheckoutSessionID, t.PaymentIntentID, t.Description, t.Metadata))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx, `SELECT `+txnCols+` FROM transactions WHERE id=$1`, id))
}

func (r *transactionsRepo) List(ctx context.Context, f repo.TxnFilter) ([]models.Transaction, int, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id=$%d", f.UserID)
	}
	if f.Type != "" {
		add("type=$%d", f.Type)
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE `+cond+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *transactionsRepo) GetCompletedPointsPurchase(ctx context.Context, sessionID string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions
		  WHERE checkout_session_id=$1 AND type='points_purchase' AND status='completed'`,
		sessionID))
}

// CreditPointsPurchase credits the user and inserts the completed ledger
// row in one transaction. The partial unique index on
// checkout_session_id makes a racing duplicate fail its insert and roll
// the credit back, so at most one credit per session can ever commit.
func (r *transactionsRepo) CreditPointsPurchase(ctx context.Context, t models.Transaction) (models.Transaction, int, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var balance int
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE users SET reward_points = reward_points + $2, updated_at=now()
			  WHERE id=$1 RETURNING reward_points`,
			t.UserID, t.Amount).Scan(&balance)
		if err != nil {
			return mapErr(err)
		}
		var saved models.Transaction
		saved, err = scanTxn(tx.QueryRow(ctx,
			`INSERT INTO transactions(id, type, user_id, amount, status,
			   checkout_session_id, payment_intent_id, description, metadata)
			 VALUES($1,'points_purchase',$2,$3,'completed',$4,$5,$6,$7)
			 RETURNING `+txnCols,
			t.ID, t.UserID, t.Amount, t.CheckoutSessionID, t.PaymentIntentID,
			t.Description, t.Metadata))
		if err != nil {
			return err
		}
		t = saved
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// a concurrent verify committed first; the rolled-back credit
			// never happened, report the existing record instead
			existing, getErr := r.GetCompletedPointsPurchase(ctx, t.CheckoutSessionID)
			if getErr != nil {
				return models.Transaction{}, 0, getErr
			}
			var current int
			if err := r.pool.QueryRow(ctx,
				`SELECT reward_points FROM users WHERE id=$1`, t.UserID).Scan(&current); err != nil {
				return models.Transaction{}, 0, mapErr(err)
			}
			return existing, current, nil
		}
		return models.Transaction{}, 0, err
	}
	return t, balance, nil
}
