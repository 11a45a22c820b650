package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` __      __                       _       _   `, "#818cf8"},
	{` \ \    / /_ _ _  _ _ __  ___ (_)_ __ | |_ `, "#a78bfa"},
	{`  \ \/\/ / _' | || | '_ \/ _ \| | '_ \|  _|`, "#c084fc"},
	{`   \_/\_/\__,_|\_, | .__/\___/|_|_| |_|\__|`, "#e879f9"},
	{`                |__/|_|                     `, "#f472b6"},
}

// PrintBanner writes the ASCII art banner and version to w. Colors are
// dropped when w is not a color capable terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("  version "+version).Faint())
	fmt.Fprintln(w)
}
