package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("failed to create account: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ledger\.accounts`).WithArgs(decimal.NewFromInt(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithTx(context.Background(), func(tx *sql.Tx) error {
		return repo.UpdateAccountBalance(context.Background(), tx, 1, decimal.NewFromInt(10))
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo, mock := newRepository(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(tx *sql.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnFailedWrite(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ledger\.accounts`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(tx *sql.Tx) error {
		return repo.UpdateAccountBalance(context.Background(), tx, 1, decimal.NewFromInt(10))
	})
	assert.ErrorContains(t, err, "deadlock detected")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumAccountFlows(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`FROM ledger\.transactions t`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("150"))

	sum, err := repo.SumAccountFlows(context.Background(), repo.DB(), 3)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(150)))
	require.NoError(t, mock.ExpectationsWereMet())
}
