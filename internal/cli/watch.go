package cli

import (
	"context"
	"io"

	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/routing"
)

// WatchRouting hot-reloads the routing table into the orchestrator until ctx ends.
// It is a no-op when no routing file is configured.
func WatchRouting(ctx context.Context, app *App, out io.Writer) error {
	path := app.Config.Routing.File
	if path == "" {
		return nil
	}
	apply := func(hs []ports.Handler) {
		if err := app.Orchestrator.SetHandlers(hs); err != nil {
			app.Logger.Error("Routing reload rejected", "err", err)
			return
		}
		printSystemMessage(out, "Routing table reloaded (%d handlers).", len(hs))
	}
	return routing.Watch(ctx, path, app.Deps, apply, app.Logger)
}
