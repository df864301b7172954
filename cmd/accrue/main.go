// Command accrue runs a single daily accrual sweep and exits. It is meant to
// be invoked from cron on working days; a sweep that already ran for the date
// exits cleanly so overlapping schedules are harmless.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"sigmafx/internal/config"
	"sigmafx/internal/database"
	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/logger"
	"sigmafx/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Accrual error: %v", err)
	}
}

func run() error {
	date := flag.String("date", "", "sweep date as YYYY-MM-DD (default: today, UTC)")
	flag.Parse()

	if _, err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	at := time.Now().UTC()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid -date value %q: %w", *date, err)
		}
		at = parsed
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	accrualService := services.NewAccrualService(dbManager.DB())

	run, err := accrualService.RunDaily(at)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case apperrors.ErrDuplicateAccrual.Code:
				logger.Get().Infow("accrual already ran for this date", "date", at.Format("2006-01-02"))
				return nil
			case apperrors.ErrMarketClosed.Code:
				logger.Get().Infow("market closed, skipping sweep", "date", at.Format("2006-01-02"))
				return nil
			}
		}
		return err
	}

	logger.Get().Infow("accrual sweep complete",
		"date", run.RunDate.Format("2006-01-02"),
		"positions_accrued", run.PositionsAccrued,
		"positions_capped", run.PositionsCapped,
		"total_profit", run.TotalProfit,
	)
	return nil
}
