package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/repository"
)

// Auditor re-derives every account balance from its transaction history and
// reports drift. It never mutates the ledger.
type Auditor struct {
	repo *repository.Repository
	log  *logrus.Logger
}

// NewAuditor initializes a new auditor
func NewAuditor(repo *repository.Repository, log *logrus.Logger) *Auditor {
	return &Auditor{repo: repo, log: log}
}

// Run replays the signed transaction sums for every account inside one
// read snapshot and logs any account whose stored balance diverges.
// Returns the number of accounts that failed reconciliation.
func (a *Auditor) Run(ctx context.Context) (int, error) {
	drift := 0
	err := a.repo.WithReadTx(ctx, func(tx *sql.Tx) error {
		accounts, err := a.repo.ListAccounts(ctx, tx)
		if err != nil {
			return err
		}
		for i := range accounts {
			replayed, err := a.repo.SumAccountFlows(ctx, tx, accounts[i].ID)
			if err != nil {
				return fmt.Errorf("failed to replay account %d: %w", accounts[i].ID, err)
			}
			if !replayed.Equal(accounts[i].Balance) {
				drift++
				a.log.WithFields(logrus.Fields{
					"account_id": accounts[i].ID,
					"number":     accounts[i].Number,
					"balance":    accounts[i].Balance.String(),
					"replayed":   replayed.String(),
				}).Error("Account balance does not match its transaction history")
			}
		}
		if drift == 0 {
			a.log.Debugf("Reconciliation passed for %d accounts", len(accounts))
		} else {
			a.log.Warnf("Reconciliation found %d of %d accounts out of balance", drift, len(accounts))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return drift, nil
}
