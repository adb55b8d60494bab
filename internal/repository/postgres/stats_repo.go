package postgres

import (
	"context"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepo struct{ pool *pgxpool.Pool }

func (r *statsRepo) Overview(ctx context.Context) (repo.Overview, error) {
	var o repo.Overview
	err := r.pool.QueryRow(ctx, `
SELECT
  (SELECT count(*) FROM users),
  (SELECT count(*) FROM users WHERE role='student'),
  (SELECT count(*) FROM users WHERE role='manager'),
  (SELECT count(*) FROM books),
  (SELECT count(*) FROM books WHERE status='pending'),
  (SELECT count(*) FROM books WHERE status='verified'),
  (SELECT count(*) FROM books WHERE status='sold'),
  (SELECT count(*) FROM books WHERE status='rejected'),
  (SELECT count(*) FROM transactions),
  (SELECT coalesce(sum(amount),0) FROM transactions WHERE type='donation' AND status='completed'),
  (SELECT coalesce(-sum(amount),0) FROM transactions WHERE type='purchase' AND status='completed')`,
	).Scan(&o.TotalUsers, &o.TotalStudents, &o.TotalManagers, &o.TotalBooks,
		&o.PendingBooks, &o.VerifiedBooks, &o.SoldBooks, &o.RejectedBooks,
		&o.TotalTransactions, &o.PointsAwarded, &o.PointsSpent)
	return o, err
}

func (r *statsRepo) RecentActivity(ctx context.Context, since time.Time) (repo.RecentActivity, error) {
	var a repo.RecentActivity
	err := r.pool.QueryRow(ctx, `
SELECT
  (SELECT count(*) FROM users WHERE created_at >= $1),
  (SELECT count(*) FROM books WHERE created_at >= $1),
  (SELECT count(*) FROM transactions WHERE created_at >= $1)`,
		since,
	).Scan(&a.Users, &a.Books, &a.Transactions)
	return a, err
}

func (r *statsRepo) BooksBySubject(ctx context.Context, limit int) ([]repo.SubjectCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject, count(*) FROM books GROUP BY subject ORDER BY count(*) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repo.SubjectCount{}
	for rows.Next() {
		var sc repo.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *statsRepo) BooksTrend(ctx context.Context, since time.Time) ([]repo.TrendPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(created_at, 'YYYY-MM-DD'), status, count(*)
		   FROM books WHERE created_at >= $1
		  GROUP BY 1, status ORDER BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repo.TrendPoint{}
	for rows.Next() {
		var tp repo.TrendPoint
		if err := rows.Scan(&tp.Date, &tp.Status, &tp.Count); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *statsRepo) BooksByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM books GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{"pending": 0, "verified": 0, "rejected": 0, "sold": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}

func (r *statsRepo) TopStudents(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE role='student'
		  ORDER BY reward_points DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
