package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/worker"
	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [task]",
	Short: "Publish a task on the job queue for a worker to run",
	Long: `Publishes the task on the configured queue (queue.backend). Use the redis or
rabbitmq backend to hand jobs to a separate 'switchboard worker' process.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("context")
		tc, err := cli.ParseContext(pairs)
		if err != nil {
			return err
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		if app.Config.Queue.Backend == "memory" {
			app.Logger.Warn("The memory queue does not outlive this process; the job will not be run")
		}

		q, err := app.NewQueue()
		if err != nil {
			return err
		}
		defer q.Close()

		task, err := domain.SanitizeTask(strings.Join(args, " "))
		if err != nil {
			return err
		}
		job, err := worker.New(app.Orchestrator, q, worker.WithLogger(app.Logger)).Enqueue(cmd.Context(), task, tc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume the job queue and run each job as a workflow",
	Long:  `Runs queue.workers consumers until interrupted, printing one NDJSON result per job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		if workers <= 0 {
			workers = app.Config.Queue.Workers
		}

		q, err := app.NewQueue()
		if err != nil {
			return err
		}
		defer q.Close()

		var mu sync.Mutex
		enc := json.NewEncoder(os.Stdout)
		p := worker.New(app.Orchestrator, q,
			worker.WithWorkers(workers),
			worker.WithLogger(app.Logger),
			worker.WithResultHandler(func(job domain.Job, res domain.Result) {
				mu.Lock()
				defer mu.Unlock()
				_ = enc.Encode(cli.NewJSONResult(res))
			}),
		)

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if app.Config.Routing.Watch {
			go func() {
				if err := cli.WatchRouting(sigCtx, app, os.Stderr); err != nil {
					app.Logger.Error("Routing watcher stopped", "err", err)
				}
			}()
		}

		return p.Start(sigCtx)
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd, workerCmd)

	enqueueCmd.Flags().StringArrayP("context", "c", nil, "Context entry as key=value (repeatable) or a JSON object")
	workerCmd.Flags().Int("workers", 0, "Number of concurrent consumers (default: queue.workers from config)")
}
