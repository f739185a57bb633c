package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/models"
	"github.com/avolkov/ledger-service/internal/repository"
)

const (
	maxAccountsPerUser = 2
	maxNumberAttempts  = 5
)

// AccountService owns balance mutation for deposits and transfers.
type AccountService struct {
	repo *repository.Repository
	log  *logrus.Logger
}

// NewAccountService initializes a new account service
func NewAccountService(repo *repository.Repository, log *logrus.Logger) *AccountService {
	return &AccountService{repo: repo, log: log}
}

// CreateAccount opens a new zero-balance account for the user. The account
// cap is checked under the user-row lock; a 7-digit number collision is
// retried up to maxNumberAttempts times, each attempt in its own
// transaction since a failed insert aborts the unit it runs in.
func (s *AccountService) CreateAccount(ctx context.Context, user *models.User) (*models.Account, error) {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, err
		}
		account := &models.Account{UserID: user.ID, Number: number, Balance: decimal.Zero}

		err = s.repo.WithTx(ctx, func(tx *sql.Tx) error {
			// The cap spans rows, so concurrent creates must serialize on
			// the parent user row. Locking the account rows themselves is
			// not enough: a blocked statement re-evaluates only the rows
			// it locked and never sees concurrently inserted ones, and a
			// user with no accounts has nothing to lock at all.
			if err := s.repo.LockUser(ctx, tx, user.ID); err != nil {
				return err
			}
			count, err := s.repo.CountAccountsByUser(ctx, tx, user.ID)
			if err != nil {
				return err
			}
			if count >= maxAccountsPerUser {
				return ErrAccountLimitExceeded
			}
			return s.repo.CreateAccount(ctx, tx, account)
		})
		if err == nil {
			s.log.Infof("Account %s created for user %d", account.Number, user.ID)
			return account, nil
		}
		if repository.IsUniqueViolation(err) {
			s.log.Warnf("Account number collision on attempt %d/%d for user %d", attempt, maxNumberAttempts, user.ID)
			continue
		}
		return nil, err
	}
	return nil, ErrNumberGenerationExhausted
}

// Deposit credits an account owned by user and records a transaction of the
// given kind in the same atomic unit.
func (s *AccountService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, user *models.User, kind string) (*models.Account, error) {
	var account *models.Account
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		account, err = s.DepositTx(ctx, tx, accountID, amount, user, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("Deposited %s to account %d (%s)", amount, accountID, kind)
	return account, nil
}

// DepositTx is Deposit running inside the caller's transaction, so credit
// issuance can combine the deposit with its own writes in one atomic unit.
func (s *AccountService) DepositTx(ctx context.Context, tx *sql.Tx, accountID int64, amount decimal.Decimal, user *models.User, kind string) (*models.Account, error) {
	account, err := s.repo.LockAccountOwnedByUser(ctx, tx, accountID, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Balance = account.Balance.Add(amount)
	if err := s.repo.UpdateAccountBalance(ctx, tx, account.ID, account.Balance); err != nil {
		return nil, err
	}
	txn := &models.Transaction{Amount: amount, Type: kind, ToAccountID: &account.ID}
	if err := s.repo.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	return account, nil
}

// Transfer moves amount from an account owned by user to any destination
// account. The debit, credit and transaction record are one atomic unit;
// both rows are locked before the balance check so concurrent transfers
// cannot overdraw the source.
func (s *AccountService) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, user *models.User) (*models.TransferResult, error) {
	var fromAccount, toAccount *models.Account
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		lockFrom := func() error {
			var err error
			fromAccount, err = s.repo.LockAccountOwnedByUser(ctx, tx, fromID, user.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		lockTo := func() error {
			var err error
			toAccount, err = s.repo.LockAccount(ctx, tx, toID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		// Lock in ascending id order so opposing transfers cannot deadlock.
		if fromID < toID {
			if err := lockFrom(); err != nil {
				return err
			}
			if err := lockTo(); err != nil {
				return err
			}
		} else {
			if err := lockTo(); err != nil {
				return err
			}
			if err := lockFrom(); err != nil {
				return err
			}
		}

		if fromAccount.ID == toAccount.ID {
			return ErrInvalidTransfer
		}
		if fromAccount.Balance.LessThan(amount) {
			return &InsufficientFundsError{Balance: fromAccount.Balance, Required: amount}
		}

		fromAccount.Balance = fromAccount.Balance.Sub(amount)
		toAccount.Balance = toAccount.Balance.Add(amount)
		if err := s.repo.UpdateAccountBalance(ctx, tx, fromAccount.ID, fromAccount.Balance); err != nil {
			return err
		}
		if err := s.repo.UpdateAccountBalance(ctx, tx, toAccount.ID, toAccount.Balance); err != nil {
			return err
		}
		txn := &models.Transaction{
			Amount:        amount,
			Type:          models.TransactionTransfer,
			FromAccountID: &fromAccount.ID,
			ToAccountID:   &toAccount.ID,
		}
		return s.repo.CreateTransaction(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("Transferred %s from account %d to account %d", amount, fromID, toID)
	return &models.TransferResult{FromAccount: fromAccount, ToAccount: toAccount}, nil
}

// GetAccountTransactions returns the account summary and its full history,
// read from one consistent snapshot.
func (s *AccountService) GetAccountTransactions(ctx context.Context, accountID int64, user *models.User) (*models.AccountStatement, error) {
	var statement *models.AccountStatement
	err := s.repo.WithReadTx(ctx, func(tx *sql.Tx) error {
		account, err := s.repo.FindAccountOwnedByUser(ctx, tx, accountID, user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		transactions, err := s.repo.FindAccountTransactions(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		statement = &models.AccountStatement{
			AccountID:    account.ID,
			Number:       account.Number,
			Balance:      account.Balance,
			Transactions: transactions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// generateAccountNumber returns a random 7-digit account number.
func generateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return fmt.Sprintf("%07d", n.Int64()+1000000), nil
}
