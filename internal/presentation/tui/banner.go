package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Tafel banner followed by the restaurant name.
func PrintBanner(w io.Writer, restaurant string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _____      __     _ ", "#f59e0b"},
		{" |_   _|_ _ / _|___| |", "#f97316"},
		{"   | |/ _` |  _/ -_) |", "#ef4444"},
		{"   |_|\\__,_|_| \\___|_|", "#e11d48"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if restaurant != "" {
		fmt.Fprintln(w, termenv.String("  "+restaurant).Faint())
	}
	fmt.Fprintln(w)
}
