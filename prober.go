package typeprobe

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/typeprobe/internal/options"
	"go.followtheprocess.codes/typeprobe/internal/snippet"
)

// inspectName is the name a single inspected expression is declared under.
const inspectName = snippet.Prefix + "inspect"

// Prober resolves snippets against an active configuration it holds, much like
// calling [Resolve] with the same [Config] every time.
//
// The configuration is loaded from the project configuration file the first time
// it's needed, or can be set explicitly with [Prober.SetOptions]. A Prober is safe
// for concurrent use, concurrent calls to SetOptions are last writer wins.
type Prober struct {
	store  *options.Store
	logger *log.Logger
	dir    string
}

// ProberOption is a functional option for configuring a [Prober].
type ProberOption func(*Prober)

// WithLogger sets the logger a [Prober] uses, by default nothing is logged.
func WithLogger(logger *log.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDir sets the directory a [Prober] discovers the project configuration
// file from, by default it's the working directory.
func WithDir(dir string) ProberOption {
	return func(p *Prober) {
		p.dir = dir
	}
}

// New returns a new [Prober].
func New(opts ...ProberOption) *Prober {
	p := &Prober{logger: discard()}

	for _, opt := range opts {
		opt(p)
	}

	p.store = options.NewStore(p.dir)

	return p
}

// SetOptions replaces the active configuration and returns it.
//
// If exclusive is true the configuration is the defaults plus overrides, otherwise
// the overrides are applied on top of the project configuration file, in which
// case it fails with [ErrConfigNotFound] if there isn't one, or an error wrapping
// [ErrConfigParse] if it is malformed.
func (p *Prober) SetOptions(exclusive bool, overrides ...Option) (Config, error) {
	cfg, err := p.store.Set(exclusive, overrides...)
	if err != nil {
		return Config{}, err
	}

	p.logger.Debug("Set options", slog.Bool("exclusive", exclusive), slog.String("dir", cfg.Dir))

	return cfg, nil
}

// Options returns the active configuration, loading it from the project
// configuration file if it has never been set.
func (p *Prober) Options() (Config, error) {
	return p.store.Get()
}

// Resolve is [Resolve] using the active configuration.
func (p *Prober) Resolve(ctx context.Context, src Source) (*Result, error) {
	cfg, err := p.Options()
	if err != nil {
		return nil, err
	}

	code := src.Normalize()

	return resolveCode(ctx, p.logger.Prefixed("resolve"), cfg, code, snippet.Names(code))
}

// Inspection is the resolved type of a single type expression.
type Inspection struct {
	// Type is the resolved type, empty if it could not be resolved.
	Type string `json:"type" toml:"type" yaml:"type"`

	// Diagnostics are any problems found compiling the expression.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" toml:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Inspect resolves a single type expression e.g. "map[string][]int".
func (p *Prober) Inspect(ctx context.Context, expr string) (Inspection, error) {
	return p.WithPreamble("").Inspect(ctx, expr)
}

// InspectObject resolves many type expressions at once, exprs maps names to
// the expressions they are declared as. Names need not be reserved names and
// expressions may refer to each other by name.
func (p *Prober) InspectObject(ctx context.Context, exprs map[string]string) (*Result, error) {
	return p.WithPreamble("").InspectObject(ctx, exprs)
}

// WithPreamble returns an [Inspector] that compiles preamble ahead of every
// expression it inspects, it may import packages and declare anything the
// expressions refer to.
func (p *Prober) WithPreamble(preamble string) Inspector {
	return Inspector{prober: p, preamble: preamble}
}

// Inspector inspects type expressions against a fixed preamble, see
// [Prober.WithPreamble].
type Inspector struct {
	prober   *Prober
	preamble string
}

// Inspect is [Prober.Inspect] with the preamble.
func (i Inspector) Inspect(ctx context.Context, expr string) (Inspection, error) {
	result, err := i.InspectObject(ctx, map[string]string{inspectName: expr})
	if err != nil {
		return Inspection{}, err
	}

	typ, _ := result.Type(inspectName)

	return Inspection{Type: typ, Diagnostics: result.Diagnostics()}, nil
}

// InspectObject is [Prober.InspectObject] with the preamble.
func (i Inspector) InspectObject(ctx context.Context, exprs map[string]string) (*Result, error) {
	cfg, err := i.prober.Options()
	if err != nil {
		return nil, err
	}

	names := slices.Sorted(maps.Keys(exprs))

	builder := &strings.Builder{}
	if i.preamble != "" {
		builder.WriteString(i.preamble)
		builder.WriteString("\n\n")
	}

	for _, name := range names {
		builder.WriteString("type ")
		builder.WriteString(name)
		builder.WriteString(" = ")
		builder.WriteString(exprs[name])
		builder.WriteString("\n")
	}

	logger := i.prober.logger.Prefixed("inspect")
	logger.Debug("Inspecting expressions", slog.Int("count", len(names)))

	return resolveCode(ctx, logger, cfg, builder.String(), names)
}
