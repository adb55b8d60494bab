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

type supportRepo struct{ pool *pgxpool.Pool }

const supportCols = `id, user_id, name, email, subject, message, category, priority,
	status, admin_response, admin_id, resolved_at, created_at, updated_at`

func scanSupport(row pgx.Row) (models.SupportQuery, error) {
	var q models.SupportQuery
	err := row.Scan(&q.ID, &q.UserID, &q.Name, &q.Email, &q.Subject, &q.Message,
		&q.Category, &q.Priority, &q.Status, &q.AdminResponse, &q.AdminID,
		&q.ResolvedAt, &q.CreatedAt, &q.UpdatedAt)
	return q, mapErr(err)
}

func (r *supportRepo) Create(ctx context.Context, q models.SupportQuery) (models.SupportQuery, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return scanSupport(r.pool.QueryRow(ctx,
		`INSERT INTO support_queries(id, user_id, name, email, subject, message, category, priority)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+supportCols,
		q.ID, q.UserID, q.Name, q.Email, q.Subject, q.Message, q.Category, q.Priority))
}

func (r *supportRepo) GetByID(ctx context.Context, id string) (models.SupportQuery, error) {
	return scanSupport(r.pool.QueryRow(ctx,
		`SELECT `+supportCols+` FROM support_queries WHERE id=$1`, id))
}

func (r *supportRepo) List(ctx context.Context, f repo.SupportFilter) ([]models.SupportQuery, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id=$%d", f.UserID)
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.Category != "" {
		add("category=$%d", f.Category)
	}
	if f.Priority != "" {
		add("priority=$%d", f.Priority)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+supportCols+` FROM support_queries WHERE `+strings.Join(where, " AND ")+
			` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SupportQuery{}
	for rows.Next() {
		q, err := scanSupport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *supportRepo) Update(ctx context.Context, q models.SupportQuery) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE support_queries SET status=$2, admin_response=$3, priority=$4,
		   admin_id=$5, resolved_at=$6, updated_at=now()
		 WHERE id=$1`,
		q.ID, q.Status, q.AdminResponse, q.Priority, q.AdminID, q.ResolvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *supportRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM support_queries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}
