package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avolkov/ledger-service/internal/models"
)

const accountColumns = `id, user_id, number, balance, created_at, updated_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.UserID, &account.Number, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return account, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, q Queryer, account *models.Account) error {
	query := `
		INSERT INTO ledger.accounts (user_id, number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := q.QueryRowContext(ctx, query, account.UserID, account.Number, account.Balance).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// CountAccountsByUser counts the user's accounts. Must run as its own
// statement after LockUser in the same transaction: only a statement
// started after the lock is granted sees rows committed by the previous
// lock holder.
func (r *Repository) CountAccountsByUser(ctx context.Context, q Queryer, userID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM ledger.accounts
		WHERE user_id = $1`
	if err := q.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user accounts: %w", err)
	}
	return count, nil
}

// FindAccountOwnedByUser retrieves an account scoped by (accountID, userID).
func (r *Repository) FindAccountOwnedByUser(ctx context.Context, q Queryer, accountID, userID int64) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger.accounts
		WHERE id = $1 AND user_id = $2`
	return scanAccount(q.QueryRowContext(ctx, query, accountID, userID))
}

// LockAccountOwnedByUser locks an account row scoped by (accountID, userID)
// for the remainder of the transaction.
func (r *Repository) LockAccountOwnedByUser(ctx context.Context, q Queryer, accountID, userID int64) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger.accounts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`
	return scanAccount(q.QueryRowContext(ctx, query, accountID, userID))
}

// LockAccount locks an account row by id alone, regardless of owner.
func (r *Repository) LockAccount(ctx context.Context, q Queryer, accountID int64) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger.accounts
		WHERE id = $1
		FOR UPDATE`
	return scanAccount(q.QueryRowContext(ctx, query, accountID))
}

// LockUserAccounts locks every account of a user in id order. Cross-entity
// rules (account cap, single active credit) serialize on these locks.
func (r *Repository) LockUserAccounts(ctx context.Context, q Queryer, userID int64) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger.accounts
		WHERE user_id = $1
		ORDER BY id
		FOR UPDATE`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Number, &account.Balance,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountBalance writes a new balance for an account.
func (r *Repository) UpdateAccountBalance(ctx context.Context, q Queryer, accountID int64, balance decimal.Decimal) error {
	query := `
		UPDATE ledger.accounts
		SET balance = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`
	if _, err := q.ExecContext(ctx, query, balance, accountID); err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return nil
}

// ListAccounts returns every account, id order.
func (r *Repository) ListAccounts(ctx context.Context, q Queryer) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger.accounts
		ORDER BY id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Number, &account.Balance,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}
