package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner followed by the version line.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text, color string
	}{
		{"            _     _   ", "#818cf8"},
		{"  _ __ ___ | |__ | |_ ", "#a78bfa"},
		{" | '_ ` _ \\| '_ \\| __|", "#c084fc"},
		{" | | | | | | |_) | |_ ", "#e879f9"},
		{" |_| |_| |_|_.__/ \\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  model-based test assistant "+version).Faint())
	fmt.Fprintln(w)
}
