package postgres

import (
	"context"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationsRepo struct{ pool *pgxpool.Pool }

const notifCols = `id, user_id, title, message, type, read, created_at`

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt)
	return n, mapErr(err)
}

func (r *notificationsRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return scanNotification(r.pool.QueryRow(ctx,
		`INSERT INTO notifications(id, user_id, title, message, type)
		 VALUES($1,$2,$3,$4,$5) RETURNING `+notifCols,
		n.ID, n.UserID, n.Title, n.Message, n.Type))
}

func (r *notificationsRepo) List(ctx context.Context, f repo.NotificationFilter) ([]models.Notification, int, int, error) {
	cond := `user_id=$1`
	args := []any{f.UserID}
	if f.UnreadOnly {
		cond += ` AND read=false`
	}

	var total, unread int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, 0, err
	}
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id=$1 AND read=false`, f.UserID).Scan(&unread); err != nil {
		return nil, 0, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notifCols+` FROM notifications WHERE `+cond+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		f.UserID, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		out = append(out, n)
	}
	return out, total, unread, rows.Err()
}

func (r *notificationsRepo) SetRead(ctx context.Context, id, userID string, read bool) (models.Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx,
		`UPDATE notifications SET read=$3 WHERE id=$1 AND user_id=$2 RETURNING `+notifCols,
		id, userID, read))
}
