package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"travel-map-service/internal/adapters/repositories"
	"travel-map-service/internal/config"
	"travel-map-service/internal/platform/db"
	"travel-map-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	seedPath    string
	logLevel    string
	logger      zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "dbtool",
	Short:         "Manage the travel journal Postgres database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = obs.NewLoggerTo(os.Stderr, logLevel)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the destinations and places tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			logger.Info().Msg("initializing database schema")
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			logger.Info().Msg("schema ready")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert journal entries from a JSON seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			return seed(ctx, conn)
		})
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema, then seed it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			logger.Info().Msg("schema ready")
			return seed(ctx, conn)
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a seed file without touching the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := repositories.LoadSeed(seedPath)
		if err != nil {
			return err
		}
		for _, user := range s.Users() {
			j := s[user]
			logger.Info().Str("user", user).Int("destinations", len(j.Destinations)).Int("places", len(j.Places)).Msg("seed_ok")
		}
		return nil
	},
}

func seed(ctx context.Context, conn *sql.DB) error {
	logger.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Info().Msg("seeding complete")
	return nil
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("DATABASE_URL (or --database-url) is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", config.Get("DATABASE_URL", ""), "Postgres connection string")
	rootCmd.PersistentFlags().StringVar(&seedPath, "path", config.Get("SEED_PATH", "data/seeds/journal.json"), "journal seed file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.Get("LOG_LEVEL", "info"), "log level")
	rootCmd.AddCommand(schemaCmd, seedCmd, initCmd, validateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
