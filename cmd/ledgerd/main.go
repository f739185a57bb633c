package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"database/sql"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/ledger-service/internal/audit"
	"github.com/avolkov/ledger-service/internal/config"
	"github.com/avolkov/ledger-service/internal/fixtures"
	"github.com/avolkov/ledger-service/internal/repository"
	"github.com/avolkov/ledger-service/internal/service"
)

func main() {
	seed := flag.Bool("seed", false, "provision demo users and exit")
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.InitSchema(ctx); err != nil {
		logger.Fatalf("Failed to initialize schema: %v", err)
	}
	userSvc := service.NewUserService(repo, logger)
	accountSvc := service.NewAccountService(repo, logger)

	if *seed {
		if err := fixtures.Seed(ctx, userSvc, accountSvc, logger); err != nil {
			logger.Fatalf("Failed to seed fixtures: %v", err)
		}
		logger.Info("Fixtures seeded")
		return
	}

	// Schedule the reconciliation auditor
	auditor := audit.NewAuditor(repo, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AuditSchedule, func() {
		if _, err := auditor.Run(ctx); err != nil {
			logger.Errorf("Audit run failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Invalid audit schedule %q: %v", cfg.AuditSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Infof("Ledger daemon started, auditing on schedule %q", cfg.AuditSchedule)
	<-ctx.Done()
	logger.Info("Shutting down")
}
