/*
Package ports defines the driven ports (interfaces) for the Switchboard orchestrator.

These interfaces decouple the routing core from handler implementations, transcript
storage backends and the external systems handlers talk to.

# Key Interfaces

  - Handler: A capability test plus an execution operation.
  - TranscriptStore: Persists the ordered transcript of an orchestrator.
  - DistributedLocker: Serializes workflows across replicas sharing a transcript.
  - DataSource, Mailer, KnowledgeBase: Collaborators injected into handlers.
*/
package ports
