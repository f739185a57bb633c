package fixtures

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/models"
	"github.com/avolkov/ledger-service/internal/service"
)

var demoUsers = []struct {
	Username string
	Email    string
	Password string
	Role     string
}{
	{"admin", "admin@ledger.local", "123456", models.RoleAdmin},
	{"alice", "alice@ledger.local", "password1", models.RoleUser},
	{"bob", "bob@ledger.local", "password2", models.RoleUser},
}

// Seed provisions the demo users, each with a freshly hashed password and
// one open account. Already-registered usernames are skipped, so seeding
// is safe to repeat.
func Seed(ctx context.Context, users *service.UserService, accounts *service.AccountService, log *logrus.Logger) error {
	for _, d := range demoUsers {
		user, err := users.Register(ctx, d.Username, d.Email, d.Password, d.Role)
		if errors.Is(err, service.ErrUserAlreadyExists) {
			log.Infof("User %s already exists, skipping", d.Username)
			continue
		}
		if err != nil {
			return err
		}
		if _, err := accounts.CreateAccount(ctx, user); err != nil {
			return err
		}
	}
	return nil
}
