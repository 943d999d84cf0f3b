package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/spf13/cobra"
)

type keyworded interface {
	Keywords() []string
}

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the registered handlers in routing order",
	Long: `Lists the registry in the order handlers are asked. With --mermaid, outputs a
Mermaid diagram (graph TD) of the routing chain; --task highlights the path a task takes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asMermaid, _ := cmd.Flags().GetBool("mermaid")
		task, _ := cmd.Flags().GetString("task")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		hs := app.Orchestrator.Handlers()
		out := cmd.OutOrStdout()

		if asMermaid {
			var overlay *graph.RouteOverlay
			if task != "" {
				overlay = graph.Trace(hs, task)
			}
			fmt.Fprint(out, graph.GenerateMermaid(hs, overlay))
			return nil
		}

		if len(hs) == 0 {
			fmt.Fprintln(out, "No handlers registered.")
			return nil
		}
		for i, h := range hs {
			fmt.Fprintf(out, "%d. %s - %s\n", i+1, h.Name(), h.Description())
			if k, ok := h.(keyworded); ok {
				fmt.Fprintf(out, "   keywords: %s\n", strings.Join(k.Keywords(), ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(handlersCmd)

	handlersCmd.Flags().Bool("mermaid", false, "Output the routing chain as a Mermaid diagram")
	handlersCmd.Flags().String("task", "", "Highlight the route of this task (with --mermaid)")
}
