package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"go.followtheprocess.codes/typeprobe"
	"go.followtheprocess.codes/typeprobe/internal/format"
	"go.followtheprocess.codes/typeprobe/internal/snippet"
)

// InspectOptions are the options passed to the inspect subcommand.
type InspectOptions struct {
	// Preamble is the path to a Go file compiled ahead of the expressions, it
	// may import packages and declare anything they refer to.
	Preamble string

	// Format is the output format e.g. text, json.
	Format string

	// Exprs are the type expressions to inspect, if empty the user is
	// prompted for one.
	Exprs []string

	ConfigOptions
}

// Validate reports whether the InspectOptions is valid, returning an error
// if it's not.
//
// nil means the options are valid.
func (i InspectOptions) Validate() error {
	if _, err := format.Get(i.Format); err != nil {
		return err
	}

	for _, expr := range i.Exprs {
		if strings.TrimSpace(expr) == "" {
			return errors.New("--expr cannot be empty")
		}
	}

	return i.ConfigOptions.Validate()
}

// Inspect implements the inspect subcommand.
func (a App) Inspect(ctx context.Context, options InspectOptions) error {
	logger := a.logger.Prefixed("inspect")

	if err := options.Validate(); err != nil {
		return err
	}

	exprs := options.Exprs
	if len(exprs) == 0 {
		logger.Debug("No expressions given, prompting")

		expr, err := prompt()
		if err != nil {
			return err
		}

		exprs = []string{expr}
	}

	exprs = unique(exprs)

	preamble := ""
	if options.Preamble != "" {
		var err error

		preamble, err = a.read(options.Preamble)
		if err != nil {
			return err
		}
	}

	prober, err := a.prober(logger, options.ConfigOptions)
	if err != nil {
		return err
	}

	declared := make(map[string]string, len(exprs))
	for i, expr := range exprs {
		declared[exprName(i)] = expr
	}

	logger.Debug("Inspecting expressions", slog.Any("exprs", exprs))

	result, err := prober.WithPreamble(preamble).InspectObject(ctx, declared)
	if err != nil {
		return err
	}

	types := make(map[string]string, len(exprs))
	for i, expr := range exprs {
		if typ, ok := result.Type(exprName(i)); ok {
			types[expr] = typ
		}
	}

	report := format.Report{Types: types, Names: exprs}

	if err := a.export(options.Format, report, result.Diagnostics(), result.Code()); err != nil {
		return err
	}

	if result.Err() != nil {
		return fmt.Errorf("could not inspect %d expression(s): %w", len(exprs), typeprobe.ErrDiagnostics)
	}

	return nil
}

// exprName returns the name the ith expression is declared under.
func exprName(i int) string {
	return snippet.Prefix + "expr" + strconv.Itoa(i)
}

// unique returns exprs without duplicates, preserving order.
func unique(exprs []string) []string {
	seen := make(map[string]bool, len(exprs))
	out := make([]string, 0, len(exprs))

	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if seen[expr] {
			continue
		}

		seen[expr] = true

		out = append(out, expr)
	}

	return slices.Clip(out)
}

// prompt asks the user for a type expression.
func prompt() (string, error) {
	var expr string

	err := huh.NewInput().
		Title("Type expression").
		Placeholder("map[string][]int").
		Value(&expr).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("expression cannot be empty")
			}

			return nil
		}).
		Run()
	if err != nil {
		return "", fmt.Errorf("could not prompt for an expression: %w", err)
	}

	return expr, nil
}
