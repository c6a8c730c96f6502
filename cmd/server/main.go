package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/hpratama/loan-ledger-engine/internal/config"
	"github.com/hpratama/loan-ledger-engine/internal/handler"
	"github.com/hpratama/loan-ledger-engine/internal/repository"
	"github.com/hpratama/loan-ledger-engine/internal/service"
	"github.com/hpratama/loan-ledger-engine/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize service and handlers
	ledgerService := service.NewLedgerService(loanRepo, eventRepo, redisClient, cfg)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(ledgerHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", ledgerHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/ledger", ledgerHandler.GetLedger).Methods("GET")
	api.HandleFunc("/loans/{loanId}/summary", ledgerHandler.GetSummary).Methods("GET")
	api.HandleFunc("/loans/{loanId}/rate-changes", ledgerHandler.AddRateChange).Methods("POST")
	api.HandleFunc("/loans/{loanId}/rate-changes/{id}", ledgerHandler.DeleteRateChange).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/prepayments", ledgerHandler.AddPrepayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/prepayments/{id}", ledgerHandler.DeletePrepayment).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/payments", ledgerHandler.AddPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payments/{id}", ledgerHandler.DeletePayment).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/projection", ledgerHandler.Project).Methods("POST")
	api.HandleFunc("/loans/{loanId}/comparison", ledgerHandler.Compare).Methods("POST")

	return router
}
