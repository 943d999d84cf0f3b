/*
Package domain contains the core domain models of the Switchboard router.

It defines what flows through a workflow: the task, the caller supplied Context,
the Transcript entries and the Result of a run. This package is kept pure and
free of I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Context: Opaque key/value bag handed unchanged to the selected handler.
  - Entry: One line of the transcript (user, agent or error).
  - Result: Outcome of a single workflow (completed, unroutable or failed).
  - LifecycleHooks: Callbacks fired at each step of a workflow.
*/
package domain
