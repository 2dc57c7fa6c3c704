package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mdliss/finsight/internal/cli"
	"github.com/mdliss/finsight/internal/engine"
	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/recommend"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [user-id]",
		Short: "Run the inference pipeline",
		Long: `Run the full behavioral inference pipeline: window extraction, signal
detection, persona classification, recommendation generation, and
guardrail review.

Results are persisted; re-running with the same data and reference date
produces identical output.

Examples:
  # Analyze one user as of today
  finsight analyze u_123

  # Analyze one user anchored to a fixed date
  finsight analyze u_123 --as-of 2026-06-30

  # Analyze every user in the database
  finsight analyze --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("all", false, "Analyze every user in the database")
	cmd.Flags().String("as-of", "", "Reference date for window extraction (YYYY-MM-DD, default today)")
	cmd.Flags().IntP("workers", "w", 0, "Batch worker pool size (default from config)")

	_ = viper.BindPFlag("analyze.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	asOf, _ := cmd.Flags().GetString("as-of")

	if !all && len(args) == 0 {
		return fmt.Errorf("provide a user ID or --all")
	}
	if all && len(args) > 0 {
		return fmt.Errorf("--all and an explicit user ID are mutually exclusive")
	}

	reference, err := parseReference(asOf)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	config := engine.DefaultConfig()
	if w := viper.GetInt("analyze.workers"); w > 0 {
		config.Workers = w
	}

	eng, err := engine.New(store, config)
	if err != nil {
		return err
	}

	if !all {
		result, err := eng.AnalyzeUser(ctx, args[0], reference)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	}

	userIDs, err := store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(userIDs) == 0 {
		return fmt.Errorf("no users in database; run 'finsight load' first")
	}

	slog.Info("Analyzing all users",
		"users", len(userIDs),
		"reference", reference.Format("2006-01-02"),
		"workers", config.Workers)

	bar := progressbar.NewOptions(len(userIDs),
		progressbar.OptionSetDescription("Analyzing users"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results := eng.AnalyzeBatch(ctx, userIDs, reference, func(string) {
		_ = bar.Add(1)
	})

	var analyzed, skipped, failed, flagged int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Result == nil || r.Result.ConsentDenied:
			skipped++
		default:
			analyzed++
			for _, rec := range r.Result.Recommendations {
				if rec.Status == model.StatusReview {
					flagged++
				}
			}
		}
	}

	fmt.Println(cli.RenderBox("Batch Analysis", fmt.Sprintf(
		"Analyzed:  %d\nSkipped:   %d (no consent)\nFailed:    %d\nFlagged:   %d recommendation(s) for review",
		analyzed, skipped, failed, flagged)))

	return nil
}

func printResult(result *engine.Result) {
	if result.ConsentDenied {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("User %s has not granted consent; nothing computed", result.UserID)))
		return
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Analysis for %s", result.UserID)))

	for _, w := range result.Windows {
		var b strings.Builder
		if len(w.Signals) == 0 {
			b.WriteString(cli.SubtleStyle.Render("No signals detected"))
		}
		for _, s := range w.Signals {
			fmt.Fprintf(&b, "%s %s = %.2f\n", cli.SuccessIcon, s.Type, s.Value)
		}
		for _, p := range w.Personas {
			marker := "  "
			if p.Primary {
				marker = cli.BoldStyle.Render("★ ")
			}
			fmt.Fprintf(&b, "%s%s (rank %d): %s\n", marker, p.Type, p.PriorityRank, p.CriteriaMet)
		}
		fmt.Println(cli.RenderBox(fmt.Sprintf("%d-day window", w.Days), strings.TrimRight(b.String(), "\n")))
	}

	if len(result.Recommendations) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No recommendations generated"))
		return
	}

	var b strings.Builder
	for _, rec := range result.Recommendations {
		line := fmt.Sprintf("[%s] %s (%s)", rec.Status, rec.Title, rec.ContentType)
		switch rec.Status {
		case model.StatusReview:
			b.WriteString(cli.WarningStyle.Render(line))
			for _, reason := range rec.ReviewReasons {
				b.WriteString("\n    " + cli.ErrorStyle.Render(reason))
			}
		default:
			b.WriteString(cli.SuccessStyle.Render(line))
		}
		b.WriteString("\n  " + rec.Rationale + "\n")
	}
	fmt.Println(cli.RenderBox("Recommendations", strings.TrimRight(b.String(), "\n")))
	fmt.Println(cli.SubtleStyle.Render(recommend.Disclaimer))
}
