/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the commission engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Seed configuration (YAML file, or demo presets into an empty store)
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: commissions.db)
           Use ":memory:" for in-memory database
  -config  Optional YAML configuration file. Plans, teams, and
           assignments from the file are persisted to the store at
           startup, replacing entries with the same ids.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/commissions.db"

  # Run with operator configuration
  ./server -config=./plans.yaml

  # Run in-memory on a different port
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config: YAML configuration loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "commissions.db", "SQLite database path")
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Seed configuration
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if err := persistConfig(ctx, store, cfg); err != nil {
			log.Fatalf("Failed to persist configuration: %v", err)
		}
		log.Printf("Loaded %d plans, %d teams, %d assignments from %s",
			len(cfg.Plans), len(cfg.Teams), len(cfg.Assignments), *configPath)
	} else if err := seedDemoConfig(ctx, store); err != nil {
		log.Fatalf("Failed to seed demo configuration: %v", err)
	}

	// Initialize handler
	handler := api.NewHandler(store)
	if err := handler.LoadConfig(ctx); err != nil {
		log.Fatalf("Failed to load configuration cache: %v", err)
	}

	// Create router
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func persistConfig(ctx context.Context, store *sqlite.Store, cfg *config.Config) error {
	for _, plan := range cfg.Plans {
		if err := store.SavePlan(ctx, plan); err != nil {
			return err
		}
	}
	for _, team := range cfg.Teams {
		if err := store.SaveTeam(ctx, team); err != nil {
			return err
		}
	}
	for _, assignment := range cfg.Assignments {
		if err := store.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
	}
	return nil
}

// seedDemoConfig populates an empty store with the factory presets so the
// server is usable out of the box. A store with any plans is left alone.
func seedDemoConfig(ctx context.Context, store *sqlite.Store) error {
	existing, err := store.LoadPlans(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	plans := []engine.CommissionPlan{
		factory.StandardSplit("standard-70-30", "Standard 70/30", 70),
		factory.WithDeductions(
			factory.CappedSplit("capped-80-20", "Capped 80/20", 80, 25000, 100),
			factory.FixedDeduction(295, "Transaction fee"),
		),
		factory.WithRoyalty(factory.TieredPlan("tiered-producer", "Tiered Producer"), 6, 3000),
	}
	for _, plan := range plans {
		if err := store.SavePlan(ctx, plan); err != nil {
			return err
		}
	}

	team := engine.Team{
		ID:                  "north-group",
		Name:                "North Group",
		LeadAgent:           "Sarah Miller",
		TeamSplitPercentage: decimal.NewFromInt(10),
	}
	if err := store.SaveTeam(ctx, team); err != nil {
		return err
	}

	assignments := []config.AssignmentYAML{
		{AgentName: "Sarah Miller", PlanID: "capped-80-20", TeamID: "north-group", Anniversary: "03-15", StartDate: "2022-03-15"},
		{AgentName: "James Wilson", PlanID: "standard-70-30", TeamID: "north-group", Anniversary: "06-01", StartDate: "2023-06-01"},
		{AgentName: "Emily Rodriguez", PlanID: "tiered-producer", Anniversary: "01-01", StartDate: "2021-01-10"},
	}
	for _, a := range assignments {
		assignment, err := config.ConvertAssignment(a)
		if err != nil {
			return err
		}
		if err := store.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
	}

	log.Println("Seeded demo plans, team, and assignments")
	return nil
}
