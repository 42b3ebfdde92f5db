// Package ledger keeps account balances consistent with their transactions.
//
// The balance cached on an account must always equal the signed sum of the
// transactions linked to it. Rather than recomputing that sum on every read,
// each transaction write produces a small set of balance deltas that are
// applied in the same database transaction as the row change. Recomputing
// from scratch remains the ground truth and is available for reconciliation.
package ledger

import (
	"nestworth-api/internal/models"

	"github.com/shopspring/decimal"
)

// Delta is a single signed balance adjustment for one account.
type Delta struct {
	AccountID string
	Amount    decimal.Decimal
}

// Contribution returns the signed amount a transaction adds to its account's
// balance: positive for income, negative for expense.
func Contribution(tx *models.Transaction) decimal.Decimal {
	if tx.Type == models.TransactionExpense {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

// Deltas computes the balance adjustments needed to move from the old state
// of a transaction to the new one. Either side may be nil: (nil, new) is a
// create, (old, nil) a delete, (old, new) an update. A side with no linked
// account contributes nothing. Adjustments for the same account are merged,
// so an update that changes neither amount, type, nor linkage yields no work.
func Deltas(oldTx, newTx *models.Transaction) []Delta {
	adjust := map[string]decimal.Decimal{}
	var order []string

	add := func(accountID string, amount decimal.Decimal) {
		if _, seen := adjust[accountID]; !seen {
			order = append(order, accountID)
		}
		adjust[accountID] = adjust[accountID].Add(amount)
	}

	if oldTx != nil && oldTx.AccountID != nil {
		add(*oldTx.AccountID, Contribution(oldTx).Neg())
	}
	if newTx != nil && newTx.AccountID != nil {
		add(*newTx.AccountID, Contribution(newTx))
	}

	var deltas []Delta
	for _, accountID := range order {
		if amount := adjust[accountID]; !amount.IsZero() {
			deltas = append(deltas, Delta{AccountID: accountID, Amount: amount})
		}
	}
	return deltas
}
