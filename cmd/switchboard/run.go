package main

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Route and execute a single task",
	Long: `Routes the task to the first handler that accepts it and prints the result.

With --json, tasks are read from stdin as NDJSON ({"task": "...", "context": {...}})
and one result per line is written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		pairs, _ := cmd.Flags().GetStringArray("context")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		tc, err := cli.ParseContext(pairs)
		if err != nil {
			return err
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		opts := cli.RunOptions{
			Task:    strings.Join(args, " "),
			Context: tc,
			JSON:    jsonMode,
			Timeout: timeout,
		}
		if !jsonMode && !plain {
			opts.Render = tui.NewRenderer()
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Execute(sigCtx, app, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayP("context", "c", nil, "Context entry as key=value (repeatable) or a JSON object")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("plain", false, "Print raw output without markdown rendering")
	runCmd.Flags().Duration("timeout", 0, "Abort the workflow after this duration")
}
