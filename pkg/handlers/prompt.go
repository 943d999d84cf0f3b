package handlers

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

const retrievalPrompt = `You are an AI assistant tasked with answering questions based on the provided context.

Context: %s

Question: %s

Based on the context, provide a concise and accurate answer. If the answer is not available in the context, state that you don't have enough information.
`

const generalPrompt = `You are a helpful AI assistant. Your goal is to process the given task description, considering the conversation history.

Conversation History:
%s

Task Description:
%s

Provide a detailed and actionable response to the task.
`

// RenderRetrievalPrompt builds a grounded question prompt from knowledge snippets.
func RenderRetrievalPrompt(question string, snippets []domain.Snippet) string {
	parts := make([]string, 0, len(snippets))
	for _, sn := range snippets {
		parts = append(parts, fmt.Sprintf("[%s] %s", sn.Title, sn.Content))
	}
	return fmt.Sprintf(retrievalPrompt, strings.Join(parts, "\n"), question)
}

// RenderGeneralPrompt builds a task prompt carrying the transcript as history.
func RenderGeneralPrompt(history []domain.Entry, task string) string {
	lines := make([]string, 0, len(history))
	for _, e := range history {
		switch e.Role {
		case domain.RoleAgent:
			lines = append(lines, fmt.Sprintf("%s (%s): %s", e.Role, e.Name, e.Content))
		default:
			lines = append(lines, fmt.Sprintf("%s: %s", e.Role, e.Content))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "(none)")
	}
	return fmt.Sprintf(generalPrompt, strings.Join(lines, "\n"), task)
}
