package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/serviqo/serviqo-backend/internal/audit"
	"github.com/serviqo/serviqo-backend/internal/bookings"
	"github.com/serviqo/serviqo-backend/internal/transactions"
	"github.com/serviqo/serviqo-backend/pkg/config"
	"github.com/serviqo/serviqo-backend/pkg/db"
	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/logger"
)

const scanBatchSize = 200

// Read-only ledger consistency scan. Exits non-zero when any booking's
// payment/refund trail violates the conservation rules.
func main() {
	logg := logger.New(logger.Options{ServiceName: "audit"})

	_ = godotenv.Load()

	bookingID := flag.String("booking", "", "audit a single booking id instead of scanning")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "audit",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	checker, err := audit.NewChecker(
		bookings.NewRepository(dbClient.DB()),
		transactions.NewRepository(dbClient.DB()),
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checker", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	if *bookingID != "" {
		id, err := uuid.Parse(*bookingID)
		if err != nil {
			logg.Error(ctx, "invalid -booking id", err)
			os.Exit(1)
		}
		if err := checker.CheckBooking(ctx, id); err != nil {
			logg.Error(logg.WithField(ctx, "booking_id", id.String()), "booking ledger inconsistent", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "booking_id", id.String()), "booking ledger consistent")
		return
	}

	var (
		checked    int
		violations int
		lastID     uuid.UUID
	)
	for {
		var batch []models.Booking
		query := dbClient.DB().WithContext(ctx).
			Select("id").
			Order("id ASC").
			Limit(scanBatchSize)
		if lastID != uuid.Nil {
			query = query.Where("id > ?", lastID)
		}
		if err := query.Find(&batch).Error; err != nil {
			logg.Error(ctx, "scanning bookings", err)
			os.Exit(1)
		}
		if len(batch) == 0 {
			break
		}

		for _, row := range batch {
			checked++
			if err := checker.CheckBooking(ctx, row.ID); err != nil {
				violations++
				logg.Error(logg.WithField(ctx, "booking_id", row.ID.String()), "booking ledger inconsistent", err)
			}
		}
		lastID = batch[len(batch)-1].ID
	}

	ctx = logg.WithFields(ctx, map[string]any{"checked": checked, "violations": violations})
	if violations > 0 {
		logg.Warn(ctx, "ledger scan finished with violations")
		os.Exit(1)
	}
	logg.Info(ctx, "ledger scan finished clean")
}
