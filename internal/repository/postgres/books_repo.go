package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type booksRepo struct{ pool *pgxpool.Pool }

const bookCols = `id, title, author, isbn, subject, mrp, condition, description, images,
	status, donor_id, verifier_id, buyer_id, rejection_reason, created_at, updated_at`

func scanBook(row pgx.Row) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Subject, &b.MRP,
		&b.Condition, &b.Description, &b.Images, &b.Status, &b.DonorID,
		&b.VerifierID, &b.BuyerID, &b.RejectionReason, &b.CreatedAt, &b.UpdatedAt)
	return b, mapErr(err)
}

func (r *booksRepo) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Images == nil {
		b.Images = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO books(id, title, author, isbn, subject, mrp, condition, description, images, status, donor_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending',$10)`,
		b.ID, b.Title, b.Author, b.ISBN, b.Subject, b.MRP, b.Condition, b.Description, b.Images, b.DonorID,
	)
	if err != nil {
		return models.Book{}, err
	}
	return r.GetByID(ctx, b.ID)
}

func (r *booksRepo) GetByID(ctx context.Context, id string) (models.Book, error) {
	return scanBook(r.pool.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id))
}

func (r *booksRepo) List(ctx context.Context, f repo.BookFilter) ([]models.Book, int, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.DonorID != "" {
		add("donor_id=$%d", f.DonorID)
	}
	if f.BuyerID != "" {
		add("buyer_id=$%d", f.BuyerID)
	}
	if f.Subject != "" {
		add("subject=$%d", f.Subject)
	}
	if f.Condition != "" {
		add("condition=$%d", f.Condition)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR isbn ILIKE $%d)", n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM books WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookCols+` FROM books WHERE `+cond+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *booksRepo) Subjects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT subject FROM books ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *booksRepo) Update(ctx context.Context, b models.Book) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET title=$2, author=$3, isbn=$4, subject=$5, mrp=$6,
		   condition=$7, description=$8, images=$9, updated_at=now()
		 WHERE id=$1`,
		b.ID, b.Title, b.Author, b.ISBN, b.Subject, b.MRP, b.Condition, b.Description, b.Images,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *booksRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

// Verify flips pending|rejected -> verified and, in the same transaction,
// credits the donor and writes the completed donation ledger row.
func (r *booksRepo) Verify(ctx context.Context, bookID, verifierID string, donorCredit int) (models.Book, error) {
	var b models.Book
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBook(tx.QueryRow(ctx,
			`UPDATE books SET status='verified', verifier_id=$2, rejection_reason='', updated_at=now()
			  WHERE id=$1 AND status IN ('pending','rejected')
			  RETURNING `+bookCols, bookID, verifierID))
		if err != nil {
			return r.transitionErr(ctx, tx, bookID, err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET reward_points = reward_points + $2, updated_at=now() WHERE id=$1`,
			b.DonorID, donorCredit); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO transactions(id, type, user_id, book_id, amount, status, description)
			 VALUES($1,'donation',$2,$3,$4,'completed',$5)`,
			uuid.NewString(), b.DonorID, b.ID, donorCredit,
			fmt.Sprintf("Reward for donated book %q", b.Title))
		return err
	})
	return b, err
}

func (r *booksRepo) Reject(ctx context.Context, bookID, verifierID, reason string) (models.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx,
		`UPDATE books SET status='rejected', verifier_id=$2, rejection_reason=$3, updated_at=now()
		  WHERE id=$1 AND status='pending'
		  RETURNING `+bookCols, bookID, verifierID, reason))
	if err != nil {
		return models.Book{}, r.transitionErr(ctx, r.pool, bookID, err)
	}
	return b, nil
}

// Purchase is the conditional three-step write: sell the book only while
// still verified, debit the buyer only while covered, record the ledger row.
func (r *booksRepo) Purchase(ctx context.Context, bookID, buyerID string, cost int) (models.Book, error) {
	var b models.Book
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBook(tx.QueryRow(ctx,
			`UPDATE books SET status='sold', buyer_id=$2, updated_at=now()
			  WHERE id=$1 AND status='verified'
			  RETURNING `+bookCols, bookID, buyerID))
		if err != nil {
			return r.transitionErr(ctx, tx, bookID, err)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE users SET reward_points = reward_points - $2, updated_at=now()
			  WHERE id=$1 AND reward_points >= $2`,
			buyerID, cost)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return services.ErrInsufficientPoints
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO transactions(id, type, user_id, book_id, amount, status, description)
			 VALUES($1,'purchase',$2,$3,$4,'completed',$5)`,
			uuid.NewString(), buyerID, b.ID, -cost,
			fmt.Sprintf("Purchased book %q", b.Title))
		return err
	})
	return b, err
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// transitionErr turns a zero-row conditional update into the right typed
// error: the book is either missing or in a state the transition forbids.
func (r *booksRepo) transitionErr(ctx context.Context, q querier, bookID string, err error) error {
	if err != services.ErrNotFound {
		return err
	}
	if _, getErr := scanBook(q.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, bookID)); getErr != nil {
		return getErr
	}
	return services.ErrInvalidTransition
}
