package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit represents an installment loan tied to one account. Balance is
// stored as a negative number: the remaining debt. Zero means fully repaid.
type Credit struct {
	ID         int64           `json:"id"`
	AccountID  int64           `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreditResult carries the outcome of a granted credit request.
type CreditResult struct {
	Account *Account `json:"account"`
	Credit  *Credit  `json:"credit"`
}

// RepaymentResult carries the outcome of a successful repayment.
type RepaymentResult struct {
	Credit        *Credit         `json:"credit"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// CreditHistory lists every credit ever issued to a user, newest first.
type CreditHistory struct {
	UserID  int64    `json:"user_id"`
	Credits []Credit `json:"credits"`
}
