package main

import (
	"context"
	"log"
	"time"

	"far-compliance-be/internal/config"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/mailer"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/internal/service"
	"far-compliance-be/pkg/database"
)

// Run once a day from a scheduler.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	notifications := service.NewNotificationService(
		unitofwork.NewRepositoryFactory(db),
		emailService,
		sysLogger,
		cfg.Usage.WarningThreshold,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	reminders, err := notifications.SendTrialReminders(ctx)
	if err != nil {
		log.Fatalf("Error: Trial reminders failed: %v", err)
	}
	warnings, err := notifications.SendUsageWarnings(ctx)
	if err != nil {
		log.Fatalf("Error: Usage warnings failed: %v", err)
	}

	log.Printf("✅ Sent %d trial reminders and %d usage warnings (%d failures)",
		reminders.TrialReminders, warnings.UsageWarnings, reminders.Failures+warnings.Failures)
}
