/*
Package observability provides tools for monitoring the Switchboard orchestrator.

It includes lifecycle hooks for structured logging and Prometheus metrics,
a helper to combine several hook sets, and an OpenTelemetry setup that
exports workflow spans.
*/
package observability
