package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/models"
	"github.com/avolkov/ledger-service/internal/repository"
	"github.com/avolkov/ledger-service/internal/utils/email"
)

// CreditService owns credit issuance and repayment. Balance mutation is
// delegated to the account service inside the same atomic unit.
type CreditService struct {
	repo     *repository.Repository
	accounts *AccountService
	mailer   *email.Sender
	log      *logrus.Logger
}

// NewCreditService initializes a new credit service. mailer may be nil when
// no SMTP relay is configured.
func NewCreditService(repo *repository.Repository, accounts *AccountService, mailer *email.Sender, log *logrus.Logger) *CreditService {
	return &CreditService{repo: repo, accounts: accounts, mailer: mailer, log: log}
}

// RequestCredit issues a credit against an account owned by user and
// deposits the principal into it. Creating the credit and funding the
// account happen in one atomic unit.
func (s *CreditService) RequestCredit(ctx context.Context, accountID int64, amount decimal.Decimal, termMonths int, user *models.User) (*models.CreditResult, error) {
	var account *models.Account
	var credit *models.Credit
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		// Locking every account of the user serializes concurrent credit
		// requests, closing the check-then-insert race on the
		// single-active-credit rule.
		accounts, err := s.repo.LockUserAccounts(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		owned := false
		for i := range accounts {
			if accounts[i].ID == accountID {
				owned = true
				break
			}
		}
		if !owned {
			return ErrAccountNotFound
		}

		active, err := s.repo.HasActiveCredit(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrActiveCreditExists
		}

		credit = &models.Credit{
			AccountID:  accountID,
			Amount:     amount,
			TermMonths: termMonths,
			Balance:    amount.Neg(),
		}
		if err := s.repo.CreateCredit(ctx, tx, credit); err != nil {
			return err
		}
		account, err = s.accounts.DepositTx(ctx, tx, accountID, amount, user, models.TransactionCreditIssuance)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Credit %d of %s over %d months issued to account %d", credit.ID, amount, termMonths, accountID)
	if s.mailer != nil {
		if err := s.mailer.SendCreditIssuedNotification(user.Email, user.Username, accountID, amount, termMonths); err != nil {
			s.log.Warnf("Credit issuance notification failed for user %d: %v", user.ID, err)
		}
	}
	return &models.CreditResult{Account: account, Credit: credit}, nil
}

// RepayCredit repays a credit from an account owned by user. The policy
// requires the amount to match the remaining debt exactly: partial
// repayment and overpayment are both rejected, with distinct errors.
func (s *CreditService) RepayCredit(ctx context.Context, creditID, accountID int64, amount decimal.Decimal, user *models.User) (*models.RepaymentResult, error) {
	var credit *models.Credit
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		account, err := s.repo.LockAccountOwnedByUser(ctx, tx, accountID, user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return &InsufficientFundsError{Balance: account.Balance, Required: amount}
		}

		credit, err = s.repo.LockCreditForAccount(ctx, tx, creditID, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCreditNotFound
		}
		if err != nil {
			return err
		}
		if credit.Balance.IsZero() {
			return ErrCreditAlreadyRepaid
		}
		debt := credit.Balance.Abs()
		if amount.GreaterThan(debt) {
			return &RepaymentAmountExceededError{Remaining: debt}
		}
		if amount.LessThan(debt) {
			return &InsufficientRepaymentAmountError{Remaining: debt}
		}

		account.Balance = account.Balance.Sub(amount)
		credit.Balance = credit.Balance.Add(amount)
		if err := s.repo.UpdateAccountBalance(ctx, tx, account.ID, account.Balance); err != nil {
			return err
		}
		if err := s.repo.UpdateCreditBalance(ctx, tx, credit.ID, credit.Balance); err != nil {
			return err
		}
		txn := &models.Transaction{
			Amount:        amount,
			Type:          models.TransactionCreditRepayment,
			FromAccountID: &account.ID,
			CreditID:      &credit.ID,
		}
		return s.repo.CreateTransaction(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Credit %d repaid in full from account %d", creditID, accountID)
	if s.mailer != nil {
		if err := s.mailer.SendCreditRepaidNotification(user.Email, user.Username, creditID, amount); err != nil {
			s.log.Warnf("Credit repayment notification failed for user %d: %v", user.ID, err)
		}
	}
	return &models.RepaymentResult{Credit: credit, AmountApplied: amount}, nil
}

// GetUserCreditHistory returns all credits ever issued across the user's
// accounts, newest first.
func (s *CreditService) GetUserCreditHistory(ctx context.Context, user *models.User) (*models.CreditHistory, error) {
	credits, err := s.repo.FindUserCredits(ctx, s.repo.DB(), user.ID)
	if err != nil {
		return nil, err
	}
	return &models.CreditHistory{UserID: user.ID, Credits: credits}, nil
}
