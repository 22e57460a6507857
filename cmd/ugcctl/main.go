package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ugc/internal/config"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/store"
)

const programName = "ugcctl"

var globalFlags = struct {
	configFile string
	envPath    string
}{}

// app holds what every subcommand needs once the root command has run
type app struct {
	config *config.CLIConfig
	db     *gorm.DB
	store  store.Store
}

var current app

func setup(cmd *cobra.Command, _ []string) error {
	config.ChdirRepoRoot()
	cfg, err := config.LoadCLIConfig(globalFlags.configFile, globalFlags.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": programName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := store.Open(store.OpenConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		SQLitePath:      cfg.Database.SQLitePath,
		Debug:           cfg.Debug,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(cmd.Context(), "Connected to database", zap.String("driver", cfg.Database.Driver))

	current = app{
		config: cfg,
		db:     db,
		store:  store.NewStore(db),
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if current.db != nil {
		if sqlDB, err := current.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logger.Flush(2 * time.Second)
}

func main() {
	rootCmd := &cobra.Command{
		Use:               programName,
		Short:             "Maintenance commands for the Feral File UGC database",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envPath, "env", "config/", "Path to environment files")

	rootCmd.AddCommand(
		migrateCommand(),
		bookmarksCommand(),
		seenCommand(),
		identityCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
