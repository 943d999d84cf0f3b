/*
Package switchboard is a deterministic task router for specialized handlers ("agents").

A caller submits a free-text task with an optional context. The orchestrator picks the
first registered handler whose capability predicate accepts the task, runs it, and keeps
an append-only transcript of the exchange.

# Concept

Selection is a plain ordered scan: no scoring, no learned routing. Given the same registry
and task, the same handler is always selected. Handlers, transcript storage and the
external systems handlers talk to sit behind the interfaces in pkg/ports (Hexagonal
Architecture), so the core can be embedded in a CLI, an HTTP server or an MCP server.

# Outcomes

  - Completed: a handler ran; its output is returned and recorded as an agent entry.
  - Unroutable: no handler matched; "Error: No suitable agent/handler found for task: ..."
    is returned and recorded as an error entry.
  - Failed: the handler returned an error; a *domain.HandlerExecutionError is returned
    and recorded as an error entry.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/switchboard"
		"github.com/aretw0/switchboard/pkg/domain"
		"github.com/aretw0/switchboard/pkg/handlers"
	)

	func main() {
		sb, err := switchboard.New(handlers.Default())
		if err != nil {
			log.Fatal(err)
		}

		out, err := sb.RunWorkflow(context.Background(), "Score the lead 'Acme Corp'", domain.Context{
			"lead_name": "Acme Corp",
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	}
*/
package switchboard
