package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tapestry banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                        _", "#818cf8"},
		{"| |_ __ _ _ __   ___  ___| |_ _ __ _   _", "#a78bfa"},
		{"| __/ _` | '_ \\ / _ \\/ __| __| '__| | | |", "#c084fc"},
		{"| || (_| | |_) |  __/\\__ \\ |_| |  | |_| |", "#e879f9"},
		{" \\__\\__,_| .__/ \\___||___/\\__|_|   \\__, |", "#f472b6"},
		{"         |_|                       |___/", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

// Status renders a short colored status word (ok, warn, error).
func Status(w io.Writer, level, msg string) {
	p := termenv.NewOutput(w).ColorProfile()
	color := "#22c55e"
	switch level {
	case "warn":
		color = "#f59e0b"
	case "error":
		color = "#ef4444"
	}
	fmt.Fprintf(w, "%s %s\n", termenv.String(level).Foreground(p.Color(color)).Bold(), msg)
}
