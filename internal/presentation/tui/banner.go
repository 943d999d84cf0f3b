package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the switchboard banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"               _ _       _     _                         _ ", "#22d3ee"},
		{"  _____      _(_) |_ ___| |__ | |__   ___   __ _ _ __ __| |", "#38bdf8"},
		{" / __\\ \\ /\\ / / | __/ __| '_ \\| '_ \\ / _ \\ / _` | '__/ _` |", "#60a5fa"},
		{" \\__ \\\\ V  V /| | || (__| | | | |_) | (_) | (_| | | | (_| |", "#818cf8"},
		{" |___/ \\_/\\_/ |_|\\__\\___|_| |_|_.__/ \\___/ \\__,_|_|  \\__,_|", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(fmt.Sprintf("  v%s", version)).Faint())
	fmt.Fprintln(w)
}
