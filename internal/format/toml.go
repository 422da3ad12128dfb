package format

import (
	"io"

	"github.com/BurntSushi/toml"
)

// TOMLExporter is an [Exporter] that writes reports as TOML documents.
type TOMLExporter struct{}

// Export implements [Exporter] for [TOMLExporter] and exports the given report
// as a complete TOML document.
func (t TOMLExporter) Export(w io.Writer, report Report) error {
	return encodeTOML(w, report)
}

func encodeTOML(w io.Writer, v any) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = ""

	return encoder.Encode(v)
}
