// Package format provides mechanisms for converting resolved snippets to and from
// external formats.
//
// Notably, the package provides the [Importer] and [Exporter] interfaces for doing this
// in a format-agnostic way, and the built in importers and exporters for text, JSON,
// YAML and TOML.
package format

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"go.followtheprocess.codes/typeprobe/internal/diag"
)

// Report is the exportable result of resolving a snippet.
type Report struct {
	// Types maps each resolved name to the text of its type.
	Types map[string]string `json:"types" toml:"types" yaml:"types"`

	// Diagnostics are the problems found compiling the snippet, in order.
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty" toml:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Names is the order Types are presented in by ordered formats, if empty the
	// names are sorted.
	Names []string `json:"-" toml:"-" yaml:"-"`
}

// Ordered returns the names in the report in the order they should be presented.
func (r Report) Ordered() []string {
	if len(r.Names) != 0 {
		return r.Names
	}

	return slices.Sorted(maps.Keys(r.Types))
}

// Exporter is the interface defining a mechanism for exporting a [Report]
// into an external format.
type Exporter interface {
	// Export exports the [Report] into an external format, written to w.
	Export(w io.Writer, report Report) error
}

// Importer is the interface defining a mechanism for importing a [Report]
// previously written by an [Exporter].
type Importer interface {
	// Import imports the data from the external format into a [Report].
	Import(r io.Reader) (Report, error)
}

// Names of the built in formats.
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
	TOML = "toml"
)

// Formats returns the names of all the built in formats.
func Formats() []string {
	return []string{Text, JSON, YAML, TOML}
}

// Get returns the built in [Exporter] called name.
func Get(name string) (Exporter, error) {
	switch name {
	case Text, "":
		return TextExporter{}, nil
	case JSON:
		return JSONExporter{}, nil
	case YAML:
		return YAMLExporter{}, nil
	case TOML:
		return TOMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected one of %v", name, Formats())
	}
}

// Encode writes v to w in the structured format called name, for anything that
// isn't a [Report] e.g. configuration.
func Encode(w io.Writer, name string, v any) error {
	switch name {
	case JSON:
		return encodeJSON(w, v)
	case YAML:
		return encodeYAML(w, v)
	case TOML, Text, "":
		return encodeTOML(w, v)
	default:
		return fmt.Errorf("unknown format %q, expected one of %v", name, Formats())
	}
}
