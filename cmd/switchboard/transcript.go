package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Inspect or clear the shared transcript",
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the transcript, oldest entry first",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		entries, err := app.Orchestrator.Transcript(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		out, err := tui.NewRenderer()(tui.TranscriptMarkdown(entries))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var transcriptClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every transcript entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		if err := app.Orchestrator.ResetTranscript(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Transcript cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptShowCmd, transcriptClearCmd)

	transcriptShowCmd.Flags().Bool("json", false, "Print entries as JSON")
}
