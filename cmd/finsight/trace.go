package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mdliss/finsight/internal/cli"
	"github.com/mdliss/finsight/internal/trace"

	"github.com/spf13/cobra"
)

func traceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <recommendation-id>",
		Short: "Show the decision trace behind a recommendation",
		Long: `Reconstruct the full audit record for one recommendation: the persona
decision that selected it, every persona that matched, the frozen
signal values it was generated from, and the guardrail outcome.

The signal context comes from a snapshot taken at generation time, so
the trace is stable even after the pipeline reruns.`,
		Args: cobra.ExactArgs(1),
		RunE: runTrace,
	}

	cmd.Flags().Bool("json", false, "Emit the trace as JSON")

	return cmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	assembler := trace.NewAssembler(store)
	t, err := assembler.Assemble(ctx, args[0])
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printTrace(t)
	return nil
}

func printTrace(t *trace.DecisionTrace) {
	rec := t.Recommendation

	var b strings.Builder
	fmt.Fprintf(&b, "User:       %s\n", rec.UserID)
	fmt.Fprintf(&b, "Template:   %s (%s)\n", rec.TemplateID, rec.ContentType)
	fmt.Fprintf(&b, "Window:     %d days\n", rec.WindowDays)
	fmt.Fprintf(&b, "Status:     %s\n", rec.Status)
	fmt.Fprintf(&b, "Rationale:  %s", rec.Rationale)
	fmt.Println(cli.RenderBox(fmt.Sprintf("Recommendation %s", rec.ID), b.String()))

	b.Reset()
	if t.Persona != nil {
		fmt.Fprintf(&b, "%s %s (rank %d)\n  %s\n",
			cli.BoldStyle.Render("★"), t.Persona.Type, t.Persona.PriorityRank, t.Persona.CriteriaMet)
	}
	for _, p := range t.AllMatches {
		if t.Persona != nil && p.Type == t.Persona.Type {
			continue
		}
		fmt.Fprintf(&b, "  %s (rank %d)\n  %s\n", p.Type, p.PriorityRank, p.CriteriaMet)
	}
	fmt.Println(cli.RenderBox("Persona decision", strings.TrimRight(b.String(), "\n")))

	b.Reset()
	for _, s := range t.Signals {
		fmt.Fprintf(&b, "%s = %.2f (computed %s)\n", s.Type, s.Value, s.ComputedAt.Format("2006-01-02"))
	}
	if len(t.Signals) == 0 {
		b.WriteString(cli.SubtleStyle.Render("No signal snapshot recorded"))
	}
	fmt.Println(cli.RenderBox("Signal snapshot", strings.TrimRight(b.String(), "\n")))

	if t.GuardrailClean {
		fmt.Println(cli.FormatSuccess("Guardrails: clean"))
		return
	}
	fmt.Println(cli.FormatWarning("Guardrails: flagged for review"))
	for _, reason := range t.ReviewReasons {
		fmt.Println("  " + cli.ErrorStyle.Render(reason))
	}
}
