// Package typeprobe resolves the types of Go type declarations written inline, in
// small snippets of source, exactly as the Go type checker sees them.
//
// Every type declared with the reserved "__" prefix in a snippet is resolved to
// the text of its fully expanded type: aliases are expanded at every depth and
// defined types declared in the snippet are expanded to their underlying type.
// Compile errors are returned alongside as data.
//
//	result, err := typeprobe.Resolve(ctx, cfg, typeprobe.Text(`
//		type Pair[K comparable, V any] struct {
//			Key K
//			Val V
//		}
//
//		type __0 = map[string]Pair[string, int]
//	`))
//
//	result.Type("__0") // "map[string]Pair[string, int]", true
//
// Snippets are compiled as a single file in their own package, imports are
// resolved with the go command from the configured directory.
package typeprobe

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/typeprobe/internal/diag"
	"go.followtheprocess.codes/typeprobe/internal/host"
	"go.followtheprocess.codes/typeprobe/internal/options"
	"go.followtheprocess.codes/typeprobe/internal/program"
	"go.followtheprocess.codes/typeprobe/internal/resolve"
	"go.followtheprocess.codes/typeprobe/internal/snippet"
)

type (
	// Config is the checker configuration used to compile a snippet.
	Config = options.Config

	// Option overrides a single [Config] field.
	Option = options.Option

	// ImportMode controls how imports in a snippet are resolved.
	ImportMode = options.ImportMode

	// RenderMode controls how resolved types are rendered to text.
	RenderMode = options.RenderMode

	// Result holds the resolved types and diagnostics for a snippet.
	Result = resolve.Result

	// Diagnostic is a single problem found while compiling a snippet.
	Diagnostic = diag.Diagnostic

	// Source is anything that normalizes to snippet source text, see [Text]
	// and [Template].
	Source = snippet.Source

	// Text is a plain text snippet.
	Text = snippet.Text

	// Template is a snippet of literal fragments with interpolated values, every
	// interpolation becomes a reserved name.
	Template = snippet.Template
)

var (
	// ErrDiagnostics is wrapped by the error from [Result.Err].
	ErrDiagnostics = resolve.ErrDiagnostics

	// ErrConfigNotFound is returned when no project configuration file can be
	// found and one was needed.
	ErrConfigNotFound = options.ErrConfigNotFound

	// ErrConfigParse is wrapped by every error reporting a malformed project
	// configuration file.
	ErrConfigParse = options.ErrConfigParse
)

// Tmpl returns a [Template] from its literal fragments and interpolated values.
func Tmpl(fragments []string, values ...any) Template {
	return snippet.Tmpl(fragments, values...)
}

// Resolve type checks src with cfg and returns the types of every reserved name
// it declares.
//
// Problems with the snippet are reported as diagnostics on the [Result], the
// returned error is non-nil only if the snippet could not be checked at all e.g.
// cfg is invalid or ctx was cancelled.
func Resolve(ctx context.Context, cfg Config, src Source) (*Result, error) {
	code := src.Normalize()
	return resolveCode(ctx, discard(), cfg, code, snippet.Names(code))
}

// ResolveNames is like [Resolve] but resolves exactly the given names instead of
// the reserved names declared in src. Names that don't declare a type are left out
// of the result.
func ResolveNames(ctx context.Context, cfg Config, src Source, names []string) (*Result, error) {
	return resolveCode(ctx, discard(), cfg, src.Normalize(), names)
}

// resolveCode builds the program for code and resolves names in it.
func resolveCode(ctx context.Context, logger *log.Logger, cfg Config, code string, names []string) (*Result, error) {
	start := time.Now()

	h := host.New(code, cfg.Package, host.OS{Dir: cfg.Dir})

	prog, err := program.Build(ctx, cfg, h)
	if err != nil {
		return nil, err
	}

	logger.Debug(
		"Built program",
		slog.Int("files", len(prog.Files)),
		slog.Int("imports", len(prog.Imports)),
		slog.Int("errors", len(prog.TypeErrors)),
		slog.Duration("took", time.Since(start)),
	)

	return resolve.NewResult(prog, names), nil
}

// discard returns a logger that throws everything away.
func discard() *log.Logger {
	return log.New(io.Discard)
}
