package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"finance/internal/cli"
	"finance/internal/config"
	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/services"
	"finance/internal/storage"
)

var (
	dbPath  string
	dryRun  bool
	rootCmd = &cobra.Command{
		Use:   "finance-seed",
		Short: "Populate an empty ledger with the default categories",
		Long: `finance-seed inserts the default income and expense categories into the
SQLite ledger. Nothing is written when any category already exists.`,
		SilenceUsage: true,
		RunE:         runSeed,
	}
)

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the default categories without writing them")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if dryRun {
		printCategories(cmd, services.DefaultCategories)
		return nil
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSeed)
	if dbPath == "" {
		dbPath = config.Load().SQLiteDBPath
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer repo.Close()

	n, err := services.SeedCategories(cmd.Context(), repo, services.DefaultCategories)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logger.Info("Seed finished", applog.FieldOperation, applog.OpSeed, applog.FieldCount, n, "path", dbPath)

	if n == 0 {
		color.New(color.FgYellow).Fprintln(out, "Categories already exist, nothing to do.")
		return nil
	}
	color.New(color.FgGreen, color.Bold).Fprintf(out, "Inserted %d categories into %s\n", n, dbPath)
	printCategories(cmd, services.DefaultCategories)
	return nil
}

func printCategories(cmd *cobra.Command, cats []core.Category) {
	out := cmd.OutOrStdout()
	income := color.New(color.FgGreen).SprintFunc()
	expense := color.New(color.FgRed).SprintFunc()
	for _, c := range cats {
		label := expense(string(c.Type))
		if c.Type == core.Income {
			label = income(string(c.Type))
		}
		fmt.Fprintf(out, "  %-18s %-8s %s\n", c.Name, label, c.Color)
	}
}
