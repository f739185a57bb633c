package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/ledger-service/internal/models"
	"github.com/avolkov/ledger-service/internal/repository"
)

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger, _ := test.NewNullLogger()
	return NewUserService(repository.NewRepository(db), logger), mock
}

func TestRegister(t *testing.T) {
	svc, mock := newUserService(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO ledger\.users`).
		WithArgs("alice", "alice@ledger.local", sqlmock.AnyArg(), models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	user, err := svc.Register(context.Background(), "alice", "alice@ledger.local", "password1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "password1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password1")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`INSERT INTO ledger\.users`).
		WithArgs("alice", "alice@ledger.local", sqlmock.AnyArg(), models.RoleUser).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := svc.Register(context.Background(), "alice", "alice@ledger.local", "password1", models.RoleUser)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsername(t *testing.T) {
	svc, mock := newUserService(t)
	now := time.Now()

	mock.ExpectQuery(`FROM ledger\.users`).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at"}).
			AddRow(1, "alice", "alice@ledger.local", "hash", models.RoleUser, now))

	user, err := svc.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameNotFound(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`FROM ledger\.users`).WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.FindByUsername(context.Background(), "ghost")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
