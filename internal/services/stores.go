package services

import (
	"context"
	"time"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
)

// Store interfaces mirror the pgx repositories so the services (and their
// tests) are independent of the database.

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
}

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id, userID string) (*models.Account, error)
	List(ctx context.Context, userID string) ([]models.Account, error)
	Update(ctx context.Context, id, userID string, update repo.AccountUpdate) (*models.Account, error)
	SoftDelete(ctx context.Context, id, userID string) error
	RecomputeBalance(ctx context.Context, id, userID string) (*models.Account, error)
	Summary(ctx context.Context, userID string) (*repo.AccountSummary, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id, userID string) (*models.Transaction, error)
	Update(ctx context.Context, id, userID string, update repo.TransactionUpdate) (*models.Transaction, error)
	Delete(ctx context.Context, id, userID string) error
	List(ctx context.Context, filters repo.TransactionFilters) ([]models.Transaction, int64, error)
	Summary(ctx context.Context, userID string) (*repo.TransactionSummary, error)
}
