package postgres

import (
	"context"
	"errors"

	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users          repo.Users
	Books          repo.Books
	Transactions   repo.Transactions
	Notifications  repo.Notifications
	SupportQueries repo.SupportQueries
	Stats          repo.Stats
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:          &usersRepo{pool},
		Books:          &booksRepo{pool},
		Transactions:   &transactionsRepo{pool},
		Notifications:  &notificationsRepo{pool},
		SupportQueries: &supportRepo{pool},
		Stats:          &statsRepo{pool},
	}
}

// withTx runs fn in a serializable transaction, rolling back on error.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return services.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
