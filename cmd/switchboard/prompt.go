package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [task]",
	Short: "Render the general-task prompt for a task and the current transcript",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		history, err := app.Orchestrator.Transcript(cmd.Context())
		if err != nil {
			return err
		}
		md := handlers.RenderGeneralPrompt(history, strings.Join(args, " "))

		render := tui.NewRenderer()
		if plain {
			render = tui.Plain
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().Bool("plain", false, "Print raw markdown")
}
