package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/samples"
	"github.com/spf13/cobra"
)

var samplesCmd = &cobra.Command{
	Use:   "samples [name]",
	Short: "Run the bundled demonstration workflows",
	Long: `Without a name, runs every sample in order. Each sample uses its own small
registry and an in-memory transcript, independent of the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		debug, _ := cmd.Flags().GetBool("debug")
		out := cmd.OutOrStdout()

		if list {
			for _, w := range samples.All() {
				fmt.Fprintf(out, "%-20s %s\n", w.Name, w.Title)
			}
			return nil
		}

		todo := samples.All()
		if len(args) == 1 {
			w, ok := samples.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown sample: %q (see --list)", args[0])
			}
			todo = []samples.Workflow{w}
		}

		logger := logging.NewNop()
		if debug {
			logger = logging.New(slog.LevelDebug)
		}

		for _, w := range todo {
			fmt.Fprintf(out, "--- %s ---\n", w.Title)
			fmt.Fprintf(out, "Task: %s\n", w.Task)
			res, err := w.Run(cmd.Context(), switchboard.WithLogger(logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Result: %s\n\n", res.Text())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	samplesCmd.Flags().Bool("list", false, "List the available samples")
}
