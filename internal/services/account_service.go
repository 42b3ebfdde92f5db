package services

import (
	"context"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
)

type AccountService struct {
	accounts AccountStore
}

func NewAccountService(accounts AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

func (s *AccountService) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	return s.accounts.Create(ctx, account)
}

func (s *AccountService) GetByID(ctx context.Context, id, userID string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id, userID)
}

func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	return s.accounts.List(ctx, userID)
}

func (s *AccountService) Update(ctx context.Context, id, userID string, update repo.AccountUpdate) (*models.Account, error) {
	return s.accounts.Update(ctx, id, userID, update)
}

func (s *AccountService) SoftDelete(ctx context.Context, id, userID string) error {
	return s.accounts.SoftDelete(ctx, id, userID)
}

// Recompute discards the cached balance in favor of the transaction sum.
func (s *AccountService) Recompute(ctx context.Context, id, userID string) (*models.Account, error) {
	return s.accounts.RecomputeBalance(ctx, id, userID)
}

func (s *AccountService) Summary(ctx context.Context, userID string) (*repo.AccountSummary, error) {
	return s.accounts.Summary(ctx, userID)
}
