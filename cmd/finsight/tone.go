package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdliss/finsight/internal/cli"
	"github.com/mdliss/finsight/internal/guardrail"

	"github.com/spf13/cobra"
)

func toneCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tone-check [text]",
		Short: "Validate recommendation copy against tone rules",
		Long: `Run candidate recommendation copy through the tone validator without
touching the database. Copywriters can check drafts before templates
ship.

Reads from stdin when no argument is given.

Examples:
  finsight tone-check "We noticed your spending went up. You can adjust it."
  echo "Stop wasting money." | finsight tone-check
  finsight tone-check --json "Your terrible choices hurt you."`,
		Args: cobra.MaximumNArgs(1),
		RunE: runToneCheck,
	}

	cmd.Flags().Bool("json", false, "Emit the structured result as JSON")

	return cmd
}

func runToneCheck(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("no text to check")
	}

	validator := guardrail.NewToneValidator()
	result := validator.Validate(text)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printToneResult(result)
	}

	// Non-zero exit so CI template checks can gate on tone.
	if !result.Valid {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("tone check failed")
	}
	return nil
}

func printToneResult(result guardrail.ToneResult) {
	if result.Valid {
		fmt.Println(cli.FormatSuccess("Tone check passed"))
		return
	}

	fmt.Println(cli.FormatError("Tone check failed"))
	for _, v := range result.Violations {
		fmt.Printf("  %s %s: %s\n",
			cli.ErrorStyle.Render(cli.ErrorIcon),
			v.Category,
			strings.Join(v.Matches, ", "))
	}
	for _, s := range result.Suggestions {
		fmt.Println("  " + cli.SubtleStyle.Render(s))
	}
}
