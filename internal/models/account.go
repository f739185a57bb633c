package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user-owned balance identified by a unique 7-digit number.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransferResult carries both sides of a completed transfer.
type TransferResult struct {
	FromAccount *Account `json:"from_account"`
	ToAccount   *Account `json:"to_account"`
}
