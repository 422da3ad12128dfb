package format

import (
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v4"
)

const yamlIndent = 2

// YAMLExporter is an [Exporter] that writes reports as YAML documents.
type YAMLExporter struct{}

// Export implements [Exporter] for [YAMLExporter] and exports the given report as
// a complete YAML document.
func (y YAMLExporter) Export(w io.Writer, report Report) error {
	return encodeYAML(w, report)
}

// YAMLImporter is an [Importer] that reads the YAML documents written by
// [YAMLExporter].
type YAMLImporter struct{}

// Import implements [Importer] for [YAMLImporter] and imports the given
// YAML document into a [Report]. An empty document is an empty report.
func (y YAMLImporter) Import(r io.Reader) (Report, error) {
	var report Report

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&report); err != nil && !errors.Is(err, io.EOF) {
		return Report{}, fmt.Errorf("could not decode YAML: %w", err)
	}

	return report, nil
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
