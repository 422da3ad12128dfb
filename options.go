package typeprobe

import "go.followtheprocess.codes/typeprobe/internal/options"

// Import and render modes.
const (
	ImportPackages   = options.ImportPackages
	ImportSource     = options.ImportSource
	ImportNone       = options.ImportNone
	RenderAlias      = options.RenderAlias
	RenderUnderlying = options.RenderUnderlying
)

// DefaultConfig returns the built in default [Config].
func DefaultConfig() Config {
	return options.Default()
}

// LoadConfig discovers the project configuration file upwards from dir and
// returns it with overrides applied.
func LoadConfig(dir string, overrides ...Option) (Config, error) {
	return options.Load(dir, overrides...)
}

// GoVersion sets the language version e.g. "1.24".
func GoVersion(v string) Option { return options.GoVersion(v) }

// Platform sets the target GOOS and GOARCH.
func Platform(goos, goarch string) Option { return options.Platform(goos, goarch) }

// Tags sets the build tags used when loading imports.
func Tags(tags ...string) Option { return options.Tags(tags...) }

// Package sets the package name given to snippets without a package clause.
func Package(name string) Option { return options.Package(name) }

// Imports sets how imports are resolved.
func Imports(mode ImportMode) Option { return options.Imports(mode) }

// Render sets how resolved types are rendered.
func Render(mode RenderMode) Option { return options.Render(mode) }

// Strict sets whether declaration level diagnostics are reported.
func Strict(strict bool) Option { return options.Strict(strict) }

// Include sets Go files compiled into the same package as every snippet.
func Include(files ...string) Option { return options.Include(files...) }

// Dir sets the directory includes are relative to and imports are loaded from.
func Dir(dir string) Option { return options.Dir(dir) }
