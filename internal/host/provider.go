package host

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Provider is a source provider, it resolves a file name to its source text.
type Provider interface {
	// Source returns the contents of the named file.
	Source(name string) ([]byte, error)
}

// OS is a [Provider] that reads files from disk, relative names are
// resolved against Dir.
type OS struct {
	Dir string // Base directory for relative names, empty means the working directory
}

// Source implements [Provider] for [OS].
func (o OS) Source(name string) ([]byte, error) {
	path := name
	if !filepath.IsAbs(path) && o.Dir != "" {
		path = filepath.Join(o.Dir, path)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}

	return contents, nil
}

// Map is an in-memory [Provider] mapping file names to their contents.
type Map map[string]string

// Source implements [Provider] for [Map].
func (m Map) Source(name string) ([]byte, error) {
	contents, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("could not read %s: %w", name, fs.ErrNotExist)
	}

	return []byte(contents), nil
}
