package main

import (
	"fmt"
	"log/slog"

	"github.com/mdliss/finsight/internal/ingest"

	"github.com/spf13/cobra"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [bundle.json]",
		Short: "Load a synthetic data bundle",
		Long: `Load a JSON bundle of users, accounts, liabilities, and transactions
into the local database.

The bundle is validated before anything is written: every account,
liability, and transaction must reference a user declared in the same
file.

Example:
  finsight load testdata/cohort.json`,
		Args: cobra.ExactArgs(1),
		RunE: runLoad,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Validate the bundle without saving")

	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	bundle, err := ingest.ReadBundleFile(args[0])
	if err != nil {
		return err
	}

	if dryRun {
		slog.Info("✅ Bundle is valid",
			"users", len(bundle.Users),
			"accounts", len(bundle.Accounts),
			"liabilities", len(bundle.Liabilities),
			"transactions", len(bundle.Transactions))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := ingest.Load(ctx, store, bundle); err != nil {
		return err
	}

	slog.Info("✅ Bundle loaded successfully!")
	return nil
}
