package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nestworth-api/internal/ledger"
	"nestworth-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TransactionRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

type TransactionFilters struct {
	UserID    string
	Type      *models.TransactionType
	Category  string
	AccountID *string
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string
	SortDir   string
	Page      int
	PerPage   int
}

// TransactionUpdate carries the mutable fields of a PATCH. ClearAccount
// detaches the transaction from its account, which is distinct from leaving
// the linkage untouched.
type TransactionUpdate struct {
	AccountID    *string
	ClearAccount bool
	Type         *models.TransactionType
	Amount       *decimal.Decimal
	Category     *string
	Description  *string
	Notes        *string
	Date         *time.Time
}

type TransactionSummary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	NetAmount     decimal.Decimal
}

func NewTransactionRepo(pool *pgxpool.Pool, timeout time.Duration) *TransactionRepo {
	return &TransactionRepo{pool: pool, timeout: timeout}
}

const transactionColumns = `id, user_id, account_id, type, amount, category,
	description, notes, transaction_date, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	var txType string
	if err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.AccountID,
		&txType,
		&tx.Amount,
		&tx.Category,
		&tx.Description,
		&tx.Notes,
		&tx.Date,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(txType)
	return &tx, nil
}

// applyDeltas adjusts account balances inside the caller's database
// transaction. The single UPDATE takes a row lock, so concurrent deltas on
// the same account serialize and accumulate instead of overwriting each
// other. Ownership is part of the predicate: an account that is missing or
// belongs to someone else aborts the whole write.
func applyDeltas(ctx context.Context, dbtx pgx.Tx, userID string, deltas []ledger.Delta) error {
	for _, delta := range deltas {
		cmd, err := dbtx.Exec(ctx, `
			UPDATE accounts
			SET balance = balance + $1, updated_at = NOW()
			WHERE id = $2 AND user_id = $3
		`, delta.Amount, delta.AccountID, userID)
		if err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrAccountLink
		}
	}
	return nil
}

// Create inserts the transaction and applies its balance contribution in one
// atomic unit. A failure on either side leaves both the transaction table and
// the account balance untouched.
func (r *TransactionRepo) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	row := dbtx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, account_id, type, amount, category, description, notes, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		tx.UserID,
		tx.AccountID,
		string(tx.Type),
		tx.Amount,
		tx.Category,
		tx.Description,
		tx.Notes,
		tx.Date,
	)
	if err := row.Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := applyDeltas(ctx, dbtx, tx.UserID, ledger.Deltas(nil, tx)); err != nil {
		return nil, err
	}

	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id, userID string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM transactions WHERE id = $1 AND user_id = $2
	`, transactionColumns), id, userID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Update rewrites the mutable fields and compensates the affected account
// balances. The old row is locked for the duration, so the old contribution
// used for the compensation cannot race another writer.
func (r *TransactionRepo) Update(ctx context.Context, id, userID string, update TransactionUpdate) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	row := dbtx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, transactionColumns), id, userID)
	oldTx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock transaction: %w", err)
	}

	newTx := *oldTx
	if update.ClearAccount {
		newTx.AccountID = nil
	} else if update.AccountID != nil {
		newTx.AccountID = update.AccountID
	}
	if update.Type != nil {
		newTx.Type = *update.Type
	}
	if update.Amount != nil {
		newTx.Amount = *update.Amount
	}
	if update.Category != nil {
		newTx.Category = *update.Category
	}
	if update.Description != nil {
		newTx.Description = *update.Description
	}
	if update.Notes != nil {
		newTx.Notes = update.Notes
	}
	if update.Date != nil {
		newTx.Date = *update.Date
	}

	updated := dbtx.QueryRow(ctx, `
		UPDATE transactions
		SET account_id = $1, type = $2, amount = $3, category = $4,
		    description = $5, notes = $6, transaction_date = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at
	`,
		newTx.AccountID,
		string(newTx.Type),
		newTx.Amount,
		newTx.Category,
		newTx.Description,
		newTx.Notes,
		newTx.Date,
		id,
		userID,
	)
	if err := updated.Scan(&newTx.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	if err := applyDeltas(ctx, dbtx, userID, ledger.Deltas(oldTx, &newTx)); err != nil {
		return nil, err
	}

	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update transaction: %w", err)
	}
	return &newTx, nil
}

// Delete removes the row and reverses its contribution in the same unit.
func (r *TransactionRepo) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	row := dbtx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, transactionColumns), id, userID)
	oldTx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock transaction: %w", err)
	}

	if _, err := dbtx.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := applyDeltas(ctx, dbtx, userID, ledger.Deltas(oldTx, nil)); err != nil {
		return err
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, filters TransactionFilters) ([]models.Transaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL, args := buildTransactionFilters(filters)

	sortColumn := mapSortColumn(filters.SortBy)
	sortDir := "DESC"
	if strings.ToLower(filters.SortDir) == "asc" {
		sortDir = "ASC"
	}

	limit := filters.PerPage
	if limit <= 0 {
		limit = 10
	}
	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		%s
		ORDER BY %s %s, created_at DESC
		LIMIT %d OFFSET %d
	`, transactionColumns, whereSQL, sortColumn, sortDir, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var results []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		results = append(results, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", whereSQL)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	return results, total, nil
}

func (r *TransactionRepo) Summary(ctx context.Context, userID string) (*TransactionSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1
	`, userID)

	var summary TransactionSummary
	if err := row.Scan(&summary.TotalIncome, &summary.TotalExpenses); err != nil {
		return nil, fmt.Errorf("transaction summary: %w", err)
	}
	summary.NetAmount = summary.TotalIncome.Sub(summary.TotalExpenses)
	return &summary, nil
}

func buildTransactionFilters(filters TransactionFilters) (string, []any) {
	clauses := []string{"WHERE user_id = $1"}
	args := []any{filters.UserID}
	index := 2

	if filters.Type != nil {
		clauses = append(clauses, fmt.Sprintf("AND type = $%d", index))
		args = append(args, string(*filters.Type))
		index++
	}

	if filters.Category != "" {
		clauses = append(clauses, fmt.Sprintf("AND category = $%d", index))
		args = append(args, filters.Category)
		index++
	}

	if filters.AccountID != nil {
		clauses = append(clauses, fmt.Sprintf("AND account_id = $%d", index))
		args = append(args, *filters.AccountID)
		index++
	}

	if filters.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("AND transaction_date >= $%d", index))
		args = append(args, *filters.DateFrom)
		index++
	}

	if filters.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("AND transaction_date <= $%d", index))
		args = append(args, *filters.DateTo)
		index++
	}

	return strings.Join(clauses, "\n"), args
}

func mapSortColumn(sortBy string) string {
	switch strings.ToLower(sortBy) {
	case "amount":
		return "amount"
	case "category":
		return "category"
	case "created":
		return "created_at"
	case "date":
		return "transaction_date"
	default:
		return "transaction_date"
	}
}
