package services

import (
	"context"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
)

type TransactionService struct {
	transactions TransactionStore
}

func NewTransactionService(transactions TransactionStore) *TransactionService {
	return &TransactionService{transactions: transactions}
}

func (s *TransactionService) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	return s.transactions.Create(ctx, tx)
}

func (s *TransactionService) GetByID(ctx context.Context, id, userID string) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, id, userID)
}

func (s *TransactionService) Update(ctx context.Context, id, userID string, update repo.TransactionUpdate) (*models.Transaction, error) {
	return s.transactions.Update(ctx, id, userID, update)
}

func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	return s.transactions.Delete(ctx, id, userID)
}

func (s *TransactionService) List(ctx context.Context, filters repo.TransactionFilters) ([]models.Transaction, int64, error) {
	return s.transactions.List(ctx, filters)
}

func (s *TransactionService) Summary(ctx context.Context, userID string) (*repo.TransactionSummary, error) {
	return s.transactions.Summary(ctx, userID)
}
