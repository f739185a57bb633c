package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds stored in the transaction_type column.
const (
	TransactionDeposit         = "deposit"
	TransactionTransfer        = "transfer"
	TransactionCreditIssuance  = "credit_issuance"
	TransactionCreditRepayment = "credit_repayment"
)

// Kinds reported by the account history projection only. A stored transfer
// is shown as transfer_in or transfer_out depending on which leg matches
// the queried account.
const (
	TransactionTransferIn  = "transfer_in"
	TransactionTransferOut = "transfer_out"
)

// Transaction is an immutable record of one balance-affecting event.
// A transfer has both accounts set; a deposit or credit issuance has only
// the destination; a credit repayment has only the source plus the credit.
// Amount is always stored positive.
type Transaction struct {
	ID            int64           `json:"id"`
	ToAccountID   *int64          `json:"to_account_id,omitempty"`
	FromAccountID *int64          `json:"from_account_id,omitempty"`
	CreditID      *int64          `json:"credit_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"transaction_type"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AccountTransaction is a history row with the amount signed relative to
// the queried account: negative when the account was the source.
type AccountTransaction struct {
	TransactionID int64           `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID *int64          `json:"from_account_id,omitempty"`
	ToAccountID   *int64          `json:"to_account_id,omitempty"`
	CreditID      *int64          `json:"credit_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AccountStatement is the account summary plus its ordered history.
type AccountStatement struct {
	AccountID    int64                `json:"account_id"`
	Number       string               `json:"number"`
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []AccountTransaction `json:"transactions"`
}
