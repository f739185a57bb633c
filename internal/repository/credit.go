package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avolkov/ledger-service/internal/models"
)

// CreateCredit creates a new credit in the database
func (r *Repository) CreateCredit(ctx context.Context, q Queryer, credit *models.Credit) error {
	query := `
		INSERT INTO ledger.credits (account_id, amount, term_months, balance, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := q.QueryRowContext(ctx, query, credit.AccountID, credit.Amount, credit.TermMonths, credit.Balance).
		Scan(&credit.ID, &credit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}
	return nil
}

// LockCreditForAccount locks a credit row resolved by the (creditID,
// accountID) pair for the remainder of the transaction.
func (r *Repository) LockCreditForAccount(ctx context.Context, q Queryer, creditID, accountID int64) (*models.Credit, error) {
	credit := &models.Credit{}
	query := `
		SELECT id, account_id, amount, term_months, balance, created_at
		FROM ledger.credits
		WHERE id = $1 AND account_id = $2
		FOR UPDATE`
	err := q.QueryRowContext(ctx, query, creditID, accountID).
		Scan(&credit.ID, &credit.AccountID, &credit.Amount, &credit.TermMonths, &credit.Balance, &credit.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credit: %w", err)
	}
	return credit, nil
}

// HasActiveCredit reports whether any credit across the user's accounts
// still carries a non-zero (negative) balance.
func (r *Repository) HasActiveCredit(ctx context.Context, q Queryer, userID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM ledger.credits c
			JOIN ledger.accounts a ON a.id = c.account_id
			WHERE a.user_id = $1 AND c.balance < 0
		)`
	if err := q.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active credits: %w", err)
	}
	return exists, nil
}

// FindUserCredits returns all credits ever issued across the user's
// accounts, newest first.
func (r *Repository) FindUserCredits(ctx context.Context, q Queryer, userID int64) ([]models.Credit, error) {
	query := `
		SELECT c.id, c.account_id, c.amount, c.term_months, c.balance, c.created_at
		FROM ledger.credits c
		JOIN ledger.accounts a ON a.id = c.account_id
		WHERE a.user_id = $1
		ORDER BY c.created_at DESC`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user credits: %w", err)
	}
	defer rows.Close()

	var credits []models.Credit
	for rows.Next() {
		var credit models.Credit
		if err := rows.Scan(&credit.ID, &credit.AccountID, &credit.Amount, &credit.TermMonths,
			&credit.Balance, &credit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit: %w", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user credits: %w", err)
	}
	return credits, nil
}

// UpdateCreditBalance writes a new balance for a credit.
func (r *Repository) UpdateCreditBalance(ctx context.Context, q Queryer, creditID int64, balance decimal.Decimal) error {
	query := `
		UPDATE ledger.credits
		SET balance = $1
		WHERE id = $2`
	if _, err := q.ExecContext(ctx, query, balance, creditID); err != nil {
		return fmt.Errorf("failed to update credit balance: %w", err)
	}
	return nil
}
