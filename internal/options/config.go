// Package options implements the typeprobe configuration: the [Config] record that
// controls how snippets are type checked, discovery and parsing of the project
// configuration file, and a [Store] holding the active configuration.
//
// There is no package level configuration, every resolution is handed a [Config]
// value explicitly. A [Store] is owned by whoever needs "set once, read many"
// behaviour.
package options

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"go/version"
	"runtime"
	"slices"
	"strings"
)

// DefaultPackage is the package name given to snippets that don't declare one.
const DefaultPackage = "probe"

// ImportMode controls how import declarations in a snippet are resolved.
type ImportMode string

const (
	// ImportPackages resolves imports with golang.org/x/tools/go/packages, exactly as
	// the go command would from the configured directory.
	ImportPackages ImportMode = "packages"

	// ImportSource resolves imports by type checking their source with the standard
	// library source importer.
	ImportSource ImportMode = "source"

	// ImportNone rejects every import, producing a diagnostic for each.
	ImportNone ImportMode = "none"
)

// RenderMode controls how resolved types are rendered to text.
type RenderMode string

const (
	// RenderAlias expands every alias but prints defined types by name.
	RenderAlias RenderMode = "alias"

	// RenderUnderlying is RenderAlias, but a defined type at the top level is
	// additionally expanded to its underlying structure.
	RenderUnderlying RenderMode = "underlying"
)

// Config is the checker configuration used to compile a snippet.
//
// The zero value is not useful, start from [Default], [Exclusive] or [Load].
type Config struct {
	// GoVersion is the language version e.g. "1.24", empty means the latest
	// version supported by the type checker.
	GoVersion string `json:"go,omitempty" toml:"go,omitempty" yaml:"go,omitempty"`

	// GOOS is the target operating system used when loading imports.
	GOOS string `json:"goos,omitempty" toml:"goos,omitempty" yaml:"goos,omitempty"`

	// GOARCH is the target architecture, it determines type sizes and is used
	// when loading imports.
	GOARCH string `json:"goarch,omitempty" toml:"goarch,omitempty" yaml:"goarch,omitempty"`

	// Package is the package name of the synthesized compilation unit.
	Package string `json:"package,omitempty" toml:"package,omitempty" yaml:"package,omitempty"`

	// Imports is the import resolution mode.
	Imports ImportMode `json:"imports,omitempty" toml:"imports,omitempty" yaml:"imports,omitempty"`

	// Render is the type rendering mode.
	Render RenderMode `json:"render,omitempty" toml:"render,omitempty" yaml:"render,omitempty"`

	// Dir is the directory used to resolve Include and to load imports from, it
	// is never read from a configuration file.
	Dir string `json:"-" toml:"-" yaml:"-"`

	// Tags are extra build tags used when loading imports.
	Tags []string `json:"tags,omitempty" toml:"tags,omitempty" yaml:"tags,omitempty"`

	// Include are Go files compiled into the same package as every snippet,
	// making their declarations visible to it. Relative paths are relative to Dir.
	Include []string `json:"include,omitempty" toml:"include,omitempty" yaml:"include,omitempty"`

	// Strict enables declaration level diagnostics such as unused imports.
	Strict bool `json:"strict" toml:"strict" yaml:"strict"`
}

// Option is a functional option that overrides a single [Config] field.
type Option func(*Config)

// Default returns the built in default [Config].
func Default() Config {
	return Config{
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Package: DefaultPackage,
		Imports: ImportPackages,
		Render:  RenderAlias,
		Strict:  true,
	}
}

// Exclusive returns [Default] with only the given overrides applied, no
// project configuration file is consulted.
func Exclusive(overrides ...Option) Config {
	cfg := Default()
	cfg.apply(overrides)

	return cfg
}

// LangVersion returns the GoVersion in the "go1.N" form expected by [types.Config],
// or "" if no version is set.
func (c Config) LangVersion() string {
	if c.GoVersion == "" {
		return ""
	}

	return "go" + strings.TrimPrefix(c.GoVersion, "go")
}

// Sizes returns the type sizes for the configured architecture.
func (c Config) Sizes() types.Sizes {
	return types.SizesFor("gc", c.GOARCH)
}

// Validate reports whether the Config is valid, returning an error if it's not.
//
// nil means the config is valid.
func (c Config) Validate() error {
	var errs []error

	if c.GoVersion != "" && !version.IsValid(c.LangVersion()) {
		errs = append(errs, fmt.Errorf("invalid go version %q", c.GoVersion))
	}

	if c.Sizes() == nil {
		errs = append(errs, fmt.Errorf("unsupported goarch %q", c.GOARCH))
	}

	if !token.IsIdentifier(c.Package) || c.Package == "_" {
		errs = append(errs, fmt.Errorf("invalid package name %q", c.Package))
	}

	if !slices.Contains([]ImportMode{ImportPackages, ImportSource, ImportNone}, c.Imports) {
		errs = append(errs, fmt.Errorf("invalid imports mode %q, allowed values are 'packages', 'source', 'none'", c.Imports))
	}

	if !slices.Contains([]RenderMode{RenderAlias, RenderUnderlying}, c.Render) {
		errs = append(errs, fmt.Errorf("invalid render mode %q, allowed values are 'alias', 'underlying'", c.Render))
	}

	return errors.Join(errs...)
}

// apply applies overrides to c in order, later options win.
func (c *Config) apply(overrides []Option) {
	for _, override := range overrides {
		if override != nil {
			override(c)
		}
	}
}

// GoVersion sets the language version.
func GoVersion(v string) Option {
	return func(c *Config) {
		c.GoVersion = v
	}
}

// Platform sets the target GOOS and GOARCH.
func Platform(goos, goarch string) Option {
	return func(c *Config) {
		c.GOOS = goos
		c.GOARCH = goarch
	}
}

// Tags sets the build tags, replacing any already configured.
func Tags(tags ...string) Option {
	return func(c *Config) {
		c.Tags = slices.Clone(tags)
	}
}

// Package sets the package name of the synthesized unit.
func Package(name string) Option {
	return func(c *Config) {
		c.Package = name
	}
}

// Imports sets the import resolution mode.
func Imports(mode ImportMode) Option {
	return func(c *Config) {
		c.Imports = mode
	}
}

// Render sets the type rendering mode.
func Render(mode RenderMode) Option {
	return func(c *Config) {
		c.Render = mode
	}
}

// Strict sets whether declaration level diagnostics are reported.
func Strict(strict bool) Option {
	return func(c *Config) {
		c.Strict = strict
	}
}

// Include sets the ambient files compiled alongside every snippet, replacing
// any already configured.
func Include(files ...string) Option {
	return func(c *Config) {
		c.Include = slices.Clone(files)
	}
}

// Dir sets the working directory for includes and import loading.
func Dir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}
