package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/hpratama/loan-ledger-engine/internal/config"
	"github.com/hpratama/loan-ledger-engine/internal/repository"
	"github.com/hpratama/loan-ledger-engine/internal/service"
)

func main() {
	log.Println("Starting ledger scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	eventRepo := repository.NewEventRepository(db)
	ledgerService := service.NewLedgerService(loanRepo, eventRepo, nil, cfg)

	// Initialize cron scheduler
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Nightly recompute keeps ledgers current even when no event lands: a
	// month rolling over adds a row for every open loan.
	_, err = c.AddFunc(cfg.Scheduler.RecomputeSpec, func() {
		recomputeAllLedgers(loanRepo, ledgerService)
	})
	if err != nil {
		log.Fatalf("Error scheduling ledger recompute job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func recomputeAllLedgers(loanRepo repository.LoanRepository, ledgerService *service.LedgerService) {
	log.Println("Running ledger recompute job...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	loans, err := loanRepo.ListActive(ctx)
	if err != nil {
		log.Printf("Error listing active loans: %v", err)
		return
	}

	recomputed := 0
	for _, loan := range loans {
		if _, _, err := ledgerService.RecomputeLedger(ctx, loan.LoanID); err != nil {
			log.Printf("Error recomputing ledger for %s: %v", loan.LoanID, err)
			continue
		}
		recomputed++
	}

	log.Printf("Ledger recompute job finished: %d/%d loans", recomputed, len(loans))
}
