package services

import (
	"context"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

type TransactionService struct {
	trx repo.Transactions
}

func NewTransactionService(t repo.Transactions) *TransactionService {
	return &TransactionService{trx: t}
}

// List returns ledger entries. Non-admin callers are pinned to their own
// user id regardless of the requested filter.
func (s *TransactionService) List(ctx context.Context, actor Actor, f repo.TxnFilter) ([]models.Transaction, int, error) {
	if !actor.Role.IsAdmin() {
		f.UserID = actor.ID
	}
	return s.trx.List(ctx, f)
}

func (s *TransactionService) Get(ctx context.Context, actor Actor, id string) (models.Transaction, error) {
	t, err := s.trx.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if !actor.Role.IsAdmin() && t.UserID != actor.ID {
		return models.Transaction{}, ErrForbidden
	}
	return t, nil
}
