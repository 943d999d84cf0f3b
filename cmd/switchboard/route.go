package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route [task]",
	Short: "Show which handler would take a task, without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		task, err := domain.SanitizeTask(strings.Join(args, " "))
		if err != nil {
			return err
		}
		h, err := app.Orchestrator.SelectHandler(task)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%v\n", domain.ErrorPrefix, err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Name(), h.Description())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
