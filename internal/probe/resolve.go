package probe

import (
	"context"
	"log/slog"
	"time"

	"go.followtheprocess.codes/typeprobe"
	"go.followtheprocess.codes/typeprobe/internal/format"
)

// ResolveOptions are the options passed to the resolve subcommand.
type ResolveOptions struct {
	// File is the snippet to resolve, "-" reads it from stdin.
	File string

	// Format is the output format e.g. text, json.
	Format string

	// Names are the specific names to resolve, empty means every reserved name
	// in the snippet.
	Names []string

	ConfigOptions
}

// Validate reports whether the ResolveOptions is valid, returning an error
// if it's not.
//
// nil means the options are valid.
func (r ResolveOptions) Validate() error {
	if _, err := format.Get(r.Format); err != nil {
		return err
	}

	return r.ConfigOptions.Validate()
}

// Resolve implements the resolve subcommand.
func (a App) Resolve(ctx context.Context, options ResolveOptions) error {
	logger := a.logger.Prefixed("resolve").With(slog.String("file", options.File))

	if err := options.Validate(); err != nil {
		return err
	}

	start := time.Now()

	src, err := a.read(options.File)
	if err != nil {
		return err
	}

	prober, err := a.prober(logger, options.ConfigOptions)
	if err != nil {
		return err
	}

	var result *typeprobe.Result

	if len(options.Names) == 0 {
		result, err = prober.Resolve(ctx, typeprobe.Text(src))
	} else {
		logger.Debug("Resolving specific names", slog.Any("names", options.Names))

		cfg, cfgErr := prober.Options()
		if cfgErr != nil {
			return cfgErr
		}

		result, err = typeprobe.ResolveNames(ctx, cfg, typeprobe.Text(src), options.Names)
	}

	if err != nil {
		return err
	}

	logger.Debug(
		"Resolved snippet",
		slog.Int("types", len(result.Names())),
		slog.Int("diagnostics", len(result.Diagnostics())),
		slog.Duration("took", time.Since(start)),
	)

	return a.report(options.File, options.Format, result)
}
