package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendCreditIssuedNotification notifies a user that a credit was issued and
// the principal deposited into their account.
func (s *Sender) SendCreditIssuedNotification(to, username string, accountID int64, amount decimal.Decimal, termMonths int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Credit Issued"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"A credit of %s over %d months has been issued.\n"+
			"The full amount has been deposited into your account %d.\n"+
			"Issued at: %s\n",
		username, amount, termMonths, accountID, time.Now().Format("2006-01-02 15:04:05"),
	)
	body += "\nBest regards,\nLedger Service"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendCreditRepaidNotification notifies a user that a credit was repaid in full.
func (s *Sender) SendCreditRepaidNotification(to, username string, creditID int64, amount decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Credit Repaid"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your credit %d has been repaid in full with a payment of %s.\n"+
			"Repaid at: %s\n",
		username, creditID, amount, time.Now().Format("2006-01-02 15:04:05"),
	)
	body += "\nBest regards,\nLedger Service"
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
