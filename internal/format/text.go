package format

import (
	_ "embed"
	"io"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
)

//go:embed templates/report.txt.tmpl
var reportTempl string

// textFunctions are custom template functions available in the textTemplate.
//
//nolint:gochecknoglobals // This has to be here
var textFunctions = template.FuncMap{
	"width": maxWidth,
	"pad":   pad,
}

// textTemplate is the parsed plain text report template.
//
//nolint:gochecknoglobals // Having the template as a global means it's parsed only once
var textTemplate = template.Must(template.New("report").Funcs(textFunctions).Parse(reportTempl))

// TextExporter is an [Exporter] that writes reports as aligned plain text, one
// name and type per line followed by any diagnostics.
type TextExporter struct{}

// Export implements [Exporter] for [TextExporter].
func (t TextExporter) Export(w io.Writer, report Report) error {
	report.Names = report.Ordered()

	buf := &strings.Builder{}
	if err := textTemplate.Execute(buf, report); err != nil {
		return err
	}

	text := strings.Trim(buf.String(), "\n")
	if text == "" {
		return nil
	}

	_, err := io.WriteString(w, text+"\n")

	return err
}

// maxWidth returns the display width of the widest name.
func maxWidth(names []string) int {
	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}

	return width
}

// pad returns the padding needed to align name to width.
func pad(name string, width int) string {
	return strings.Repeat(" ", max(width-runewidth.StringWidth(name), 0))
}
