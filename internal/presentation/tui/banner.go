package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the vitrine ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Teal to blue gradient
	lines := []struct {
		text  string
		color string
	}{
		{"        _ _        _", "#2dd4bf"},
		{" __   _(_) |_ _ __(_)_ __   ___", "#22d3ee"},
		{" \\ \\ / / | __| '__| | '_ \\ / _ \\", "#38bdf8"},
		{"  \\ V /| | |_| |  | | | | |  __/", "#60a5fa"},
		{"   \\_/ |_|\\__|_|  |_|_| |_|\\___|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("   "+version).Faint())
	fmt.Fprintln(w)
}
