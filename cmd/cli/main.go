package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	postgresrepo "github.com/finanza/ledger/internal/adapter/repository/postgres"
	"github.com/finanza/ledger/internal/infrastructure/postgres"
	"github.com/finanza/ledger/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Ledger CLI tool",
		Long:  `A command line interface for interacting with the ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-evaluate held operations",
		Run: func(cmd *cobra.Command, args []string) {
			sweepHeld()
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [operation-id]",
		Short: "Verify a single operation group balances",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			verifyOperation(args[0])
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	ledgerCmd.AddCommand(sweepCmd)
	ledgerCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Migration commands
	var databaseURL string
	var migrationsPath string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(databaseURL, migrationsPath, false)
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(databaseURL, migrationsPath, true)
		},
	}

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	// Reserve seeding
	var reserveDatabaseURL string
	var reserveCurrency string

	seedReserveCmd := &cobra.Command{
		Use:   "seed-reserve",
		Short: "Create the system reserve account if it does not exist",
		Run: func(cmd *cobra.Command, args []string) {
			seedReserve(reserveDatabaseURL, reserveCurrency)
		},
	}
	seedReserveCmd.Flags().StringVar(&reserveDatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	seedReserveCmd.Flags().StringVar(&reserveCurrency, "currency", "USD", "Reserve account currency")
	rootCmd.AddCommand(seedReserveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/admin/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && !consistent {
		fmt.Printf("Consistency check FAILED\n")
		if drifts, ok := result["drifts"].([]any); ok {
			for _, d := range drifts {
				fmt.Printf("  drift: %v\n", d)
			}
		}
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	fmt.Printf("Accounts checked: %v\n", result["checked_accounts"])
	fmt.Printf("Posted debits: %v\n", result["posted_debits"])
	fmt.Printf("Posted credits: %v\n", result["posted_credits"])
}

func sweepHeld() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/admin/sweep", "application/json", bytes.NewReader(nil))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Sweep FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sweep complete\n")
	fmt.Printf("Evaluated: %v\n", result["evaluated"])
	fmt.Printf("Promoted: %v\n", result["promoted"])
	fmt.Printf("Voided: %v\n", result["voided"])
	fmt.Printf("Still held: %v\n", result["still_held"])
}

func verifyOperation(operationID string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/operations/" + operationID + "/verify")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Verify FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if balanced, ok := result["balanced"].(bool); ok && balanced {
		fmt.Printf("Operation %s is balanced\n", operationID)
		return
	}

	fmt.Printf("Operation %s is NOT balanced\n", operationID)
	os.Exit(1)
}

func seedReserve(databaseURL, currency string) {
	if databaseURL == "" {
		fmt.Println("database URL is required (--database-url or DATABASE_URL)")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, databaseURL, 2, 1)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	accountRepo := postgresrepo.NewAccountRepository(pool)
	userRepo := postgresrepo.NewUserRepository(pool)
	idGen := postgresrepo.NewULIDGenerator()
	accountUC := usecase.NewAccountUseCase(accountRepo, userRepo, idGen)

	reserve, err := accountUC.EnsureSystemReserve(ctx, currency)
	if err != nil {
		fmt.Printf("Failed to seed reserve: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("System reserve ready: %s (%s)\n", reserve.ID, reserve.Currency)
}

func runMigrations(databaseURL, path string, down bool) {
	if databaseURL == "" {
		fmt.Println("database URL is required (--database-url or DATABASE_URL)")
		os.Exit(1)
	}

	var err error
	if down {
		err = postgres.RunMigrationsDown(databaseURL, path)
	} else {
		err = postgres.RunMigrations(databaseURL, path)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}
