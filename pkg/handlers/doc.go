/*
Package handlers provides the built-in task handlers.

Every built-in handler uses the same capability policy: a case-insensitive
substring match against its keyword set. Execution returns a deterministic
summary of the task and context, enriched by the collaborator injected through
the options (knowledge base, data source or mailer) when one is present.

	registry := handlers.Default() // RAG, TAG, Email, Compliance, Sales, HR
*/
package handlers
