package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.followtheprocess.codes/hue"
)

// Styles.
const (
	errorStyle   = hue.Red | hue.Bold
	warningStyle = hue.Yellow | hue.Bold
	gutterStyle  = hue.Blue | hue.Bold
	dimmed       = hue.BrightBlack | hue.Italic
)

// Handler is called once for every [Diagnostic] that should be shown.
type Handler func(d Diagnostic)

// SimpleHandler returns a [Handler] that writes the single line, unstyled
// representation of every diagnostic to w.
func SimpleHandler(w io.Writer) Handler {
	return func(d Diagnostic) {
		fmt.Fprintln(w, d)
	}
}

// PrettyConsoleHandler returns a [Handler] that writes a rich, coloured rendering
// of every diagnostic to w, showing the offending line of src with the
// column highlighted.
//
// src must be the snippet text the diagnostics were produced from, without any
// synthesized header.
func PrettyConsoleHandler(w io.Writer, src string) Handler {
	lines := strings.Split(src, "\n")

	return func(d Diagnostic) {
		style := errorStyle
		if d.Severity == SeverityWarning {
			style = warningStyle
		}

		fmt.Fprintf(w, "%s: %s\n", style.Text(d.Severity.String()+"["+d.Code.String()+"]"), hue.Bold.Text(d.Msg))

		if !d.Position.IsValid() || d.Position.Line > len(lines) {
			fmt.Fprintln(w)
			return
		}

		line := lines[d.Position.Line-1]
		number := strconv.Itoa(d.Position.Line)
		margin := strings.Repeat(" ", len(number))

		fmt.Fprintf(w, "%s %s %s\n", margin, gutterStyle.Text("-->"), dimmed.Text(d.Position.String()))
		fmt.Fprintf(w, "%s %s\n", margin, gutterStyle.Text("|"))
		fmt.Fprintf(w, "%s %s %s\n", gutterStyle.Text(number), gutterStyle.Text("|"), line)
		fmt.Fprintf(
			w,
			"%s %s %s%s\n\n",
			margin,
			gutterStyle.Text("|"),
			padding(line, d.Position.StartCol),
			style.Text(strings.Repeat("^", highlightWidth(line, d.Position))),
		)
	}
}

// padding returns the whitespace needed to place a marker under the byte column
// col (1 indexed) of line, preserving tabs and accounting for wide characters.
func padding(line string, col int) string {
	end := min(max(col-1, 0), len(line))

	builder := &strings.Builder{}

	for _, r := range line[:end] {
		if r == '\t' {
			builder.WriteByte('\t')
			continue
		}

		builder.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	return builder.String()
}

// highlightWidth returns the display width of the highlighted range of line,
// always at least 1.
func highlightWidth(line string, pos Position) int {
	start := min(max(pos.StartCol-1, 0), len(line))
	end := min(max(pos.EndCol, pos.StartCol), len(line))

	if end <= start {
		return 1
	}

	return max(runewidth.StringWidth(line[start:end]), 1)
}
