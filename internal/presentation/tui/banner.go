package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Subtle gradient-like color scheme (Teal/Cyan)
	lines := []struct {
		text, color string
	}{
		{"      _ _                 _   ", "#2dd4bf"},
		{"   __| (_) __ _  ___  ___| |_ ", "#22d3ee"},
		{"  / _` | |/ _` |/ _ \\/ __| __|", "#38bdf8"},
		{" | (_| | | (_| |  __/\\__ \\ |_ ", "#60a5fa"},
		{"  \\__,_|_|\\__, |\\___||___/\\__|", "#818cf8"},
		{"          |___/               ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
