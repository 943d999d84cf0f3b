// Package middleware wraps a ports.TranscriptStore with redaction and
// encryption at rest. Compose with Chain; masking goes before encryption.
package middleware
