package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about the database and produce a PDF report",
	Example: `  datasage ask "What are the top selling products this month?"
  datasage ask "Show revenue by category" --config analytics.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	wf, closeStore, err := buildWorkflow()
	if err != nil {
		return err
	}
	defer closeStore()

	state, err := wf.Run(cmd.Context(), question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, entry := range state.Log {
		fmt.Fprintln(out, entry)
	}
	fmt.Fprintln(out)

	if state.Failed() {
		if state.ReportPath != "" {
			fmt.Fprintf(out, "Run failed: %s (details in %s)\n", state.Err, state.ReportPath)
		}
		return fmt.Errorf("%s", state.Err)
	}

	fmt.Fprintf(out, "Report: %s\n", state.ReportPath)
	return nil
}
