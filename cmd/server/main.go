/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lending engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize the record store (SQLite or CSV log)
  3. Create API handler with policy/schedule config
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port              HTTP server port (default: 8080)
  -store             Backend: "sqlite" or "csv" (default: sqlite)
  -db                SQLite database path (default: loans.db)
                     Use ":memory:" for an in-memory database
  -csv               CSV log path (default: data/loans.csv)
  -advance-fraction  Max advance as fraction of monthly gross (default: 0.5)
  -min-salary        Minimum monthly gross to qualify; 0 disables
  -periods-per-year  Compounding frequency (default: 12)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/loans.db"

  # Run against a flat CSV log with a 40% cap
  ./server -store=csv -csv="./data/loans.csv" -advance-fraction=0.4
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday/lending-engine/api"
	"github.com/payday/lending-engine/lending"
	"github.com/payday/lending-engine/store/csvlog"
	"github.com/payday/lending-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	storeKind := flag.String("store", "sqlite", `record store backend: "sqlite" or "csv"`)
	dbPath := flag.String("db", "loans.db", "SQLite database path")
	csvPath := flag.String("csv", "data/loans.csv", "CSV log path")
	advanceFraction := flag.Float64("advance-fraction", 0.5, "max advance as a fraction of monthly gross salary")
	minSalary := flag.Float64("min-salary", 0, "minimum monthly gross salary to qualify (0 disables)")
	periodsPerYear := flag.Int("periods-per-year", 12, "repayment periods per year")
	flag.Parse()

	// Initialize store
	store, closer, err := openStore(*storeKind, *dbPath, *csvPath)
	if err != nil {
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	defer closer.Close()

	// Policy and compounding configuration
	policy := lending.AdvancePolicy{
		MaxFraction:      decimal.NewFromFloat(*advanceFraction),
		MinMonthlySalary: decimal.NewFromFloat(*minSalary),
	}
	cfg := lending.ScheduleConfig{PeriodsPerYear: *periodsPerYear}

	// Initialize handler and router
	handler := api.NewHandler(store, policy, cfg)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// openStore selects the record store backend.
func openStore(kind, dbPath, csvPath string) (lending.RecordStore, io.Closer, error) {
	switch kind {
	case "sqlite":
		s, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "csv":
		if dir := filepath.Dir(csvPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		s, err := csvlog.Open(csvPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
