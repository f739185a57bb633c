package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avolkov/ledger-service/internal/models"
)

// CreateTransaction appends one immutable transaction record. Rows are
// never updated or deleted afterwards.
func (r *Repository) CreateTransaction(ctx context.Context, q Queryer, txn *models.Transaction) error {
	query := `
		INSERT INTO ledger.transactions (to_account_id, from_account_id, credit_id, amount, transaction_type, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := q.QueryRowContext(ctx, query, txn.ToAccountID, txn.FromAccountID, txn.CreditID, txn.Amount, txn.Type).
		Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindAccountTransactions returns the account's history, newest first with
// id-descending tie-break. Amounts are signed relative to the queried
// account and transfers are classified as transfer_in or transfer_out.
func (r *Repository) FindAccountTransactions(ctx context.Context, q Queryer, accountID int64) ([]models.AccountTransaction, error) {
	query := `
		SELECT
			t.id,
			CASE
				WHEN t.to_account_id = $1 AND t.transaction_type = 'transfer' THEN 'transfer_in'
				WHEN t.from_account_id = $1 AND t.transaction_type = 'transfer' THEN 'transfer_out'
				ELSE t.transaction_type
			END AS type,
			CASE
				WHEN t.from_account_id = $1 THEN -t.amount
				ELSE t.amount
			END AS amount,
			t.from_account_id,
			t.to_account_id,
			t.credit_id,
			t.created_at
		FROM ledger.transactions t
		WHERE t.to_account_id = $1 OR t.from_account_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	rows, err := q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.AccountTransaction
	for rows.Next() {
		var txn models.AccountTransaction
		var fromID, toID, creditID sql.NullInt64
		if err := rows.Scan(&txn.TransactionID, &txn.Type, &txn.Amount,
			&fromID, &toID, &creditID, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if fromID.Valid {
			txn.FromAccountID = &fromID.Int64
		}
		if toID.Valid {
			txn.ToAccountID = &toID.Int64
		}
		if creditID.Valid {
			txn.CreditID = &creditID.Int64
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account transactions: %w", err)
	}
	return transactions, nil
}

// SumAccountFlows replays the account's transaction history as a signed sum.
// A consistent ledger satisfies balance == SumAccountFlows for every account.
func (r *Repository) SumAccountFlows(ctx context.Context, q Queryer, accountID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN t.from_account_id = $1 THEN -t.amount
				ELSE t.amount
			END
		), 0)
		FROM ledger.transactions t
		WHERE t.to_account_id = $1 OR t.from_account_id = $1`
	if err := q.QueryRowContext(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account flows: %w", err)
	}
	return sum, nil
}
