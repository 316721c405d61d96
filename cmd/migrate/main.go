package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/srsports/backend/internal/config"
	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/migration"
	"github.com/srsports/backend/internal/repository"
)

var dbURL string

// rootCmd はマイグレーション CLI のルート
var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the S & R Sports database schema",
	Long: `Apply the embedded schema to a self-hosted Postgres database.

Available subcommands:
  up      - Apply every pending migration (default)
  down    - Roll back N migrations, or all of them with --all
  fresh   - Drop every table and re-apply all migrations
  version - Show the applied schema version`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUp(cmd, args)
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE:  runUp,
}

var downAll bool

var downCmd = &cobra.Command{
	Use:   "down [N]",
	Short: "Roll back the last N migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDown,
}

var freshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Drop every table and re-apply all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(pool *pgxpool.Pool) error {
			logging.Info("dropping all tables")
			if err := migration.Fresh(pool); err != nil {
				return err
			}
			logging.Info("schema recreated")
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(pool *pgxpool.Pool) error {
			v, dirty, ok, err := migration.Version(pool)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	downCmd.Flags().BoolVar(&downAll, "all", false, "roll back every migration")
	rootCmd.AddCommand(upCmd, downCmd, freshCmd, versionCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	return withDB(cmd.Context(), func(pool *pgxpool.Pool) error {
		if err := migration.Up(pool); err != nil {
			return err
		}
		logging.Info("migrations applied")
		return nil
	})
}

func runDown(cmd *cobra.Command, args []string) error {
	steps := 1
	if downAll {
		steps = 0
	} else if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		steps = n
	}
	return withDB(cmd.Context(), func(pool *pgxpool.Pool) error {
		if err := migration.Down(pool, steps); err != nil {
			return err
		}
		logging.Info("migrations rolled back", "steps", steps)
		return nil
	})
}

// withDB はプールを開いて fn に渡す
func withDB(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	url := dbURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			// DATA_BACKEND の検証に落ちても DATABASE_URL だけは使える
			url = os.Getenv("DATABASE_URL")
		} else {
			url = cfg.DatabaseURL
		}
	}
	if url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pool, err := repository.NewPool(ctx, url)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), "console")
	defer logging.Sync()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Fatal("migrate failed", "error", err)
	}
}
