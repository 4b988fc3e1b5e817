/*
main.go - Application entry point

PURPOSE:
  Starts the FieldQuest earnings and experience engine. Handles
  configuration, dependency injection, and graceful shutdown.

COMMANDS:
  serve   Run the HTTP server (the default workflow)
  seed    Load a demo technician, settings, and a few jobs into the
          database, then exit. Useful for trying the API.

CONFIGURATION:
  Flags first, environment second. A .env file in the working directory
  is loaded automatically when present.
    --port / PORT        HTTP server port (default: 8080)
    --db   / DATABASE    SQLite database path (default: fieldquest.db)
                         Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush state to the database and close it
  4. Exit

EXAMPLES:
  # Run with file database
  ./fieldquest serve --db="./data/fieldquest.db"

  # Seed demo data, then serve
  ./fieldquest seed --db="./data/fieldquest.db"
  ./fieldquest serve --db="./data/fieldquest.db"

SEE ALSO:
  - api/server.go: Router configuration
  - app/app.go: State assembly and persistence
  - persist/sqlite: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fieldquest/engine/api"
	"github.com/fieldquest/engine/app"
	"github.com/fieldquest/engine/comp"
	"github.com/fieldquest/engine/core"
	"github.com/fieldquest/engine/jobs"
	"github.com/fieldquest/engine/persist/sqlite"
	"github.com/fieldquest/engine/xp"
)

var (
	port   int
	dbPath string
)

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "fieldquest",
		Short: "Earnings and experience engine for field technicians",
	}
	root.PersistentFlags().IntVar(&port, "port", envInt("PORT", 8080), "HTTP server port")
	root.PersistentFlags().StringVar(&dbPath, "db", envStr("DATABASE", "fieldquest.db"), "SQLite database path")

	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

// openApp builds the engine on a SQLite store and restores saved state.
func openApp() (*app.App, *sqlite.KV, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	engine := app.New(store, nil)
	if err := engine.Load(context.Background()); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load saved state: %w", err)
	}
	return engine, store, nil
}

// =============================================================================
// SERVE
// =============================================================================

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, store, err := openApp()
			if err != nil {
				return err
			}
			defer store.Close()

			router := api.NewRouter(api.NewHandler(engine))
			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Printf("🚀 Server starting on http://localhost:%d", port)
				log.Printf("📊 API available at http://localhost:%d/api", port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Println("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			if err := engine.Save(ctx); err != nil {
				log.Printf("Final save failed: %v", err)
			}

			log.Println("Server stopped")
			return nil
		},
	}
}

// =============================================================================
// SEED
// =============================================================================

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo technician and sample jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, store, err := openApp()
			if err != nil {
				return err
			}
			defer store.Close()

			if _, exists := engine.User(); exists {
				return fmt.Errorf("database already has a profile; seed needs a fresh one")
			}

			engine.CreateUser("Alex Rivera", "alex@example.com", xp.Trade{
				ID: "hvac", Name: "HVAC Technician", Color: "#16a34a",
			})

			td := comp.TradeDefaultsFor("hvac")
			company := comp.SettingsFromTrade("Rivera Heating & Air", comp.PlanCommission, *td)
			goals := app.DailyGoals{
				JobsPerDay:    3,
				HoursPerDay:   decimal.NewFromInt(8),
				RevenuePerDay: core.NewMoneyFromInt(900),
				XPPerDay:      400,
			}
			if err := engine.CompleteSetup(company, goals); err != nil {
				return err
			}

			samples := []jobs.CreateInput{
				{
					Title: "AC compressor replacement", Client: "Meadowbrook Apartments",
					Location: "412 Meadowbrook Ln", Priority: core.PriorityHigh,
					CallType:  core.CallEmergency,
					LaborCost: core.NewMoneyFromInt(350), PartsCost: core.NewMoneyFromInt(480),
				},
				{
					Title: "Seasonal furnace tune-up", Client: "J. Okafor",
					Priority:  core.PriorityMedium,
					LaborCost: core.NewMoneyFromInt(140), PartsCost: core.NewMoneyFromInt(25),
				},
				{
					Title: "Thermostat install", Client: "Hilltop Dental",
					CallType:  core.CallAfterHours,
					LaborCost: core.NewMoneyFromInt(95), PartsCost: core.NewMoneyFromInt(210),
				},
			}
			for _, in := range samples {
				if _, err := engine.Jobs.Create(in); err != nil {
					return fmt.Errorf("seed job %q: %w", in.Title, err)
				}
			}

			fmt.Printf("Seeded profile and %d jobs into %s\n", len(samples), dbPath)
			return nil
		},
	}
}
