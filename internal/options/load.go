package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.yaml.in/yaml/v4"
	"golang.org/x/mod/modfile"
)

// Project configuration file names, searched for in this order in each directory.
const (
	TOMLFile = "typeprobe.toml"
	YAMLFile = "typeprobe.yaml"
)

var (
	// ErrConfigNotFound is returned when a project configuration file was required
	// but none could be discovered.
	ErrConfigNotFound = errors.New("cannot find typeprobe.toml or typeprobe.yaml")

	// ErrConfigParse is the generic configuration parse error, details are provided
	// through a [ParseError].
	ErrConfigParse = errors.New("malformed configuration")
)

// ParseError is returned when a configuration file (or the go.mod consulted for
// the default language version) exists but is malformed.
type ParseError struct {
	Err    error  // The underlying parse error
	Path   string // Path to the offending file
	Line   int    // Line of the error (1 indexed), 0 if unknown
	Column int    // Column of the error (1 indexed), 0 if unknown
}

// Error implements the error interface for [ParseError].
func (p *ParseError) Error() string {
	switch {
	case p.Line > 0 && p.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %v", p.Path, p.Line, p.Column, p.Err)
	case p.Line > 0:
		return fmt.Sprintf("%s:%d: %v", p.Path, p.Line, p.Err)
	default:
		return fmt.Sprintf("%s: %v", p.Path, p.Err)
	}
}

// Unwrap allows errors.Is to match both [ErrConfigParse] and the underlying error.
func (p *ParseError) Unwrap() []error {
	return []error{ErrConfigParse, p.Err}
}

// Find walks up from start to locate the nearest project configuration file.
//
// It returns ok == false (and a nil error) if the filesystem root is reached
// without finding one.
func Find(start string) (path string, ok bool, err error) {
	return findUp(start, TOMLFile, YAMLFile)
}

// Load discovers the nearest project configuration file above dir, parses it and
// applies the overrides on top, so caller supplied values win.
//
// If dir is empty, the current working directory is used. The returned config's
// Dir is the directory holding the configuration file unless overridden.
//
// Load returns [ErrConfigNotFound] if there is no configuration file to merge with
// and a [*ParseError] if it (or the go.mod consulted for a default language
// version) is malformed.
func Load(dir string, overrides ...Option) (Config, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("could not get working directory: %w", err)
		}

		dir = cwd
	}

	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, err
	}

	if !ok {
		return Config{}, fmt.Errorf("%w (searched upwards from %s)", ErrConfigNotFound, dir)
	}

	cfg, err := ParseFile(path)
	if err != nil {
		return Config{}, err
	}

	if cfg.GoVersion == "" {
		goVersion, err := goModVersion(cfg.Dir)
		if err != nil {
			return Config{}, err
		}

		cfg.GoVersion = goVersion
	}

	cfg.apply(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// ParseFile parses a single project configuration file, the format is chosen by
// extension. Keys absent from the file keep their [Default] values.
func ParseFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read %s: %w", path, err)
	}

	cfg := Default()
	cfg.Dir = filepath.Dir(path)

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, tomlError(path, data, err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) != 0 {
			return Config{}, &ParseError{Path: path, Err: fmt.Errorf("unknown key %q", undecoded[0].String())}
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)

		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, yamlError(path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported configuration format %q", ext)
	}

	return cfg, nil
}

// tomlError converts a toml decoding error into a [*ParseError], surfacing the
// position of the problem when the decoder reports one.
func tomlError(path string, data []byte, err error) error {
	var perr toml.ParseError
	if !errors.As(err, &perr) {
		return &ParseError{Path: path, Err: err}
	}

	column := 0
	if start := perr.Position.Start; start >= 0 && start <= len(data) {
		column = start - bytes.LastIndexByte(data[:start], '\n')
	}

	return &ParseError{
		Path:   path,
		Line:   perr.Position.Line,
		Column: column,
		Err:    errors.New(perr.Message),
	}
}

// yamlError converts a yaml decoding error into a [*ParseError], reporting the
// position of the first problem.
func yamlError(path string, err error) error {
	var (
		parseErr *yaml.ParserError
		typeErr  *yaml.TypeError
	)

	switch {
	case errors.As(err, &parseErr):
		return &ParseError{
			Path:   path,
			Line:   parseErr.Line,
			Column: parseErr.Column,
			Err:    errors.New(parseErr.Message),
		}
	case errors.As(err, &typeErr) && len(typeErr.Errors) != 0:
		first := typeErr.Errors[0]

		return &ParseError{
			Path:   path,
			Line:   first.Line,
			Column: first.Column,
			Err:    first.Err,
		}
	default:
		return &ParseError{Path: path, Err: err}
	}
}

// goModVersion returns the go directive of the nearest go.mod above dir, or ""
// if there isn't one (or it has no go directive).
func goModVersion(dir string) (string, error) {
	path, ok, err := findUp(dir, "go.mod")
	if err != nil || !ok {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}

	file, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		perr := &ParseError{Path: path, Err: err}

		var list modfile.ErrorList
		if errors.As(err, &list) && len(list) != 0 {
			perr.Line = list[0].Pos.Line
			perr.Column = list[0].Pos.LineRune
			perr.Err = list[0].Err
		}

		return "", perr
	}

	if file.Go == nil {
		return "", nil
	}

	return file.Go.Version, nil
}

// findUp walks up from start looking for the first of names to exist.
func findUp(start string, names ...string) (path string, ok bool, err error) {
	if start == "" {
		start = "."
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		for _, name := range names {
			candidate := filepath.Join(dir, name)

			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, true, nil
			}

			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return "", false, nil
}

// String renders the config as the TOML document that would produce it.
func (c Config) String() string {
	buf := &strings.Builder{}

	encoder := toml.NewEncoder(buf)
	encoder.Indent = ""

	if err := encoder.Encode(c); err != nil {
		return fmt.Sprintf("Config(%v)", err)
	}

	return buf.String()
}
