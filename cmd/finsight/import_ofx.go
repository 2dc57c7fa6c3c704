package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/ofx"

	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx --user <id> [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files into a
user's history.

Examples:
  # Import single file
  finsight import-ofx --user u_123 ~/Downloads/checking_jan.qfx

  # Import all QFX files in a directory
  finsight import-ofx --user u_123 ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("user", "u", "", "User ID that owns the imported transactions (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("📥 Importing OFX files...",
		"user", userID,
		"file_count", len(allFiles),
		"dry_run", dryRun)

	var allTransactions []model.Transaction
	seen := make(map[string]bool) // Dedup by hash across files

	parser := ofx.NewParser()

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		transactions, err := parser.ParseFile(f, userID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, tx := range transactions {
			if seen[tx.Hash] {
				continue
			}
			seen[tx.Hash] = true
			allTransactions = append(allTransactions, tx)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions", len(transactions),
			"added", added)
	}

	if len(allTransactions) == 0 {
		return fmt.Errorf("no transactions parsed from %d file(s)", len(allFiles))
	}

	if dryRun {
		slog.Info("Dry run complete, nothing saved", "transactions", len(allTransactions))
		return nil
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("✅ Import complete", "transactions", len(allTransactions))
	return nil
}
