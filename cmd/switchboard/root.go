package main

import (
	"fmt"
	"os"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Switchboard routes tasks to the first handler that accepts them",
	Long: `Switchboard is a task orchestrator: each task is routed to the first registered
handler that claims it, executed, and recorded in a shared transcript.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./switchboard.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// newApp builds the App from the persistent flags.
func newApp(cmd *cobra.Command, tweak ...func(*cli.AppOptions)) (*cli.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	opts := cli.AppOptions{ConfigPath: configPath, Debug: debug}
	for _, t := range tweak {
		t(&opts)
	}
	return cli.NewApp(opts)
}
