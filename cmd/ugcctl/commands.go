package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/bookmark"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/seen"
	"github.com/feral-file/ff-ugc/internal/store"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store.Migrate(cmd.Context(), current.db); err != nil {
				return err
			}
			logger.InfoCtx(cmd.Context(), "Database migrated")
			return nil
		},
	}
}

func bookmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Bookmark maintenance",
	}

	renormalize := &cobra.Command{
		Use:   "renormalize",
		Short: "Compact every user's bookmark order indexes to 0..n-1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := bookmark.NewService(current.store, adapter.NewClock())
			report, err := bookmark.RenormalizeAll(cmd.Context(), current.store, svc,
				current.config.Worker.WorkerPoolSize, current.config.Worker.WorkerQueueSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d rewritten=%d failed=%d\n", report.Users, report.Rewritten, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d users failed to renormalize", report.Failed)
			}
			return nil
		},
	}

	cmd.AddCommand(renormalize)
	return cmd
}

func seenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen",
		Short: "Seen watermark maintenance",
	}

	importSentinels := &cobra.Command{
		Use:   "import-sentinels",
		Short: "Fold legacy sentinel submissions into seen watermarks and delete them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := seen.ImportLegacySentinels(cmd.Context(), current.store, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d rows=%d advanced=%d\n", report.Users, report.Rows, report.Advanced)
			return nil
		},
	}

	cmd.AddCommand(importSentinels)
	return cmd
}

func identityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity maintenance",
	}

	ensureWallet := &cobra.Command{
		Use:   "ensure-wallet <address>...",
		Short: "Create wallet-only legacy identities for addresses nobody holds yet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				address, err := domain.ParseWalletAddress(raw)
				if err != nil {
					return fmt.Errorf("invalid wallet address %q: %w", raw, err)
				}

				ident, created, err := current.store.EnsureWalletIdentity(cmd.Context(), address.String())
				if err != nil {
					return fmt.Errorf("failed to ensure wallet identity: %w", err)
				}
				logger.InfoCtx(cmd.Context(), "Ensured wallet identity",
					zap.String("wallet", address.String()),
					zap.String("identityID", ident.ID),
					zap.Bool("created", created))
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s created=%t\n", address, ident.ID, created)
			}
			return nil
		},
	}

	cmd.AddCommand(ensureWallet)
	return cmd
}
