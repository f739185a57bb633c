package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain rule violations are detected before any write and returned as
// typed errors. Callers translate them into transport responses; the
// service never encodes status codes itself.
var (
	ErrAccountNotFound           = errors.New("account not found")
	ErrAccountLimitExceeded      = errors.New("user already has the maximum number of accounts")
	ErrNumberGenerationExhausted = errors.New("failed to generate a unique account number")
	ErrInvalidTransfer           = errors.New("cannot transfer to the same account")
	ErrActiveCreditExists        = errors.New("user already has an active credit")
	ErrCreditNotFound            = errors.New("credit not found")
	ErrCreditAlreadyRepaid       = errors.New("credit is already repaid")
	ErrUserAlreadyExists         = errors.New("username is already taken")
)

// InsufficientFundsError reports a balance too low for the requested debit.
type InsufficientFundsError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s", e.Balance, e.Required)
}

// RepaymentAmountExceededError reports a repayment larger than the
// remaining debt.
type RepaymentAmountExceededError struct {
	Remaining decimal.Decimal
}

func (e *RepaymentAmountExceededError) Error() string {
	return fmt.Sprintf("repayment amount exceeds remaining debt of %s", e.Remaining)
}

// InsufficientRepaymentAmountError reports a repayment smaller than the
// remaining debt. Partial repayment is not accepted: the full remaining
// amount must be paid in one operation.
type InsufficientRepaymentAmountError struct {
	Remaining decimal.Decimal
}

func (e *InsufficientRepaymentAmountError) Error() string {
	return fmt.Sprintf("repayment must cover the full remaining debt of %s", e.Remaining)
}
