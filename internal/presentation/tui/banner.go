package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Axon banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                   ", "#818cf8"},
		{"    / \\   __  _____  _ __ ", "#a78bfa"},
		{"   / _ \\  \\ \\/ / _ \\| '_ \\", "#c084fc"},
		{"  / ___ \\  >  < (_) | | | |", "#e879f9"},
		{" /_/   \\_\\/_/\\_\\___/|_| |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
