package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer when stdout is a terminal and a
// pass-through otherwise, so piped output stays plain markdown.
func NewRenderer() Renderer {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return Plain
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns the markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// TranscriptMarkdown formats entries as a markdown list, one bullet per entry.
func TranscriptMarkdown(entries []domain.Entry) string {
	if len(entries) == 0 {
		return "_Transcript is empty._\n"
	}
	var sb strings.Builder
	sb.WriteString("## Transcript\n\n")
	for _, e := range entries {
		who := string(e.Role)
		if e.Name != "" {
			who = fmt.Sprintf("%s (%s)", who, e.Name)
		}
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", who, e.Content))
	}
	return sb.String()
}
