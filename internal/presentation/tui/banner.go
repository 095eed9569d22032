package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the café banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Coffee tones from crema to roast.
	lines := []struct {
		text  string
		color string
	}{
		{"  ____             _     _        ", "#f5deb3"},
		{" | __ )  __ _ _ __(_)___| |_ __ _ ", "#deb887"},
		{" |  _ \\ / _` | '__| / __| __/ _` |", "#d2a679"},
		{" | |_) | (_| | |  | \\__ \\ || (_| |", "#b5835a"},
		{" |____/ \\__,_|_|  |_|___/\\__\\__,_|", "#8b5a2b"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  Wime Cafe ordering assistant "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
