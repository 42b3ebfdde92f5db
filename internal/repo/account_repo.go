package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestworth-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AccountRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

type AccountUpdate struct {
	Name *string
	Type *models.AccountType
}

type AccountSummary struct {
	TotalAccounts  int64
	TotalBalance   decimal.Decimal
	AccountsByType map[models.AccountType]int64
	BalanceByType  map[models.AccountType]decimal.Decimal
}

func NewAccountRepo(pool *pgxpool.Pool, timeout time.Duration) *AccountRepo {
	return &AccountRepo{pool: pool, timeout: timeout}
}

const accountColumns = `id, user_id, name, type, balance, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	var accountType string
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&accountType,
		&account.Balance,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Type = models.AccountType(accountType)
	return &account, nil
}

func (r *AccountRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at
	`, account.UserID, account.Name, string(account.Type), account.Balance)

	if err := row.Scan(&account.ID, &account.IsActive, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id, userID string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM accounts WHERE id = $1 AND user_id = $2
	`, accountColumns), id, userID)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepo) List(ctx context.Context, userID string) ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`, accountColumns), userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepo) Update(ctx context.Context, id, userID string, update AccountUpdate) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET name = COALESCE($1, name),
		    type = COALESCE($2, type),
		    updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING %s
	`, accountColumns), update.Name, (*string)(update.Type), id, userID)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// SoftDelete flips the active flag; the row and its transaction history stay.
func (r *AccountRepo) SoftDelete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeBalance replaces the cached balance with the signed sum of the
// account's transactions. The incremental ledger path is authoritative during
// normal operation; this is the ground-truth repair for drift introduced
// outside the API (manual edits, migrations).
func (r *AccountRepo) RecomputeBalance(ctx context.Context, id, userID string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET balance = COALESCE((
			SELECT SUM(CASE WHEN t.type = 'income' THEN t.amount ELSE -t.amount END)
			FROM transactions t
			WHERE t.account_id = accounts.id
		), 0),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, accountColumns), id, userID)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("recompute balance: %w", err)
	}
	return account, nil
}

func (r *AccountRepo) Summary(ctx context.Context, userID string) (*AccountSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT type, COUNT(*), COALESCE(SUM(balance), 0)
		FROM accounts
		WHERE user_id = $1 AND is_active = TRUE
		GROUP BY type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("account summary: %w", err)
	}
	defer rows.Close()

	summary := &AccountSummary{
		TotalBalance:   decimal.Zero,
		AccountsByType: make(map[models.AccountType]int64),
		BalanceByType:  make(map[models.AccountType]decimal.Decimal),
	}
	for rows.Next() {
		var accountType string
		var count int64
		var balance decimal.Decimal
		if err := rows.Scan(&accountType, &count, &balance); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary.TotalAccounts += count
		summary.TotalBalance = summary.TotalBalance.Add(balance)
		summary.AccountsByType[models.AccountType(accountType)] = count
		summary.BalanceByType[models.AccountType(accountType)] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}
