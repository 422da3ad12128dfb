package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/txtar"
	"go.followtheprocess.codes/typeprobe"
	"go.followtheprocess.codes/typeprobe/internal/diag"
	"go.followtheprocess.codes/typeprobe/internal/format"
	"go.followtheprocess.codes/typeprobe/internal/snippet"
	"golang.org/x/sync/errgroup"
)

// Files in a check fixture archive.
const (
	fixtureSnippet     = "snippet.go"
	fixtureWant        = "want.yaml"
	fixtureWantJSON    = "want.json"
	fixtureDiagnostics = "diagnostics.txt"
)

// DefaultCheckPattern is the glob matching check fixtures when none is given.
const DefaultCheckPattern = "**/*.txtar"

// CheckOptions are the options passed to the check subcommand.
type CheckOptions struct {
	// Pattern is a doublestar glob, relative to Dir, matching the fixtures to check.
	Pattern string

	// Update rewrites the expectations in every fixture with the actual results.
	Update bool

	ConfigOptions
}

// Validate reports whether the CheckOptions is valid, returning an error
// if it's not.
//
// nil means the options are valid.
func (c CheckOptions) Validate() error {
	if !doublestar.ValidatePattern(c.Pattern) {
		return fmt.Errorf("invalid fixture pattern %q", c.Pattern)
	}

	return c.ConfigOptions.Validate()
}

// Check implements the check subcommand.
//
// Every fixture is a txtar archive holding a snippet.go, the types it should resolve
// to in want.yaml (or want.json) and optionally the diagnostics it should produce in
// diagnostics.txt.
func (a App) Check(ctx context.Context, options CheckOptions) error {
	if options.Pattern == "" {
		options.Pattern = DefaultCheckPattern
	}

	root := options.Dir
	if root == "" {
		root = "."
	}

	logger := a.logger.Prefixed("check").With(slog.String("pattern", options.Pattern))
	logger.Debug("Collecting fixtures", slog.String("root", root))

	if err := options.Validate(); err != nil {
		return err
	}

	matches, err := doublestar.Glob(os.DirFS(root), options.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("could not collect fixtures: %w", err)
	}

	if len(matches) == 0 {
		return fmt.Errorf("no fixtures match %q in %s", options.Pattern, root)
	}

	logger.Debug("Checking fixtures", slog.Int("number", len(matches)))

	prober, err := a.prober(logger, options.ConfigOptions)
	if err != nil {
		return err
	}

	paths := make([]string, len(matches))
	for i, match := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(match))
	}

	failures := make([]error, len(paths))

	group := errgroup.Group{}
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		group.Go(func() error {
			failures[i] = a.checkFixture(ctx, logger, prober, path, options.Update)
			return ctx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	failed := 0

	for i, path := range paths {
		if failures[i] != nil {
			failed++

			msg.Ferror(a.stderr, "%s: %v", path, failures[i])

			continue
		}

		if options.Update {
			msg.Fsuccess(a.stdout, "%s updated", path)
		} else {
			msg.Fsuccess(a.stdout, "%s is valid", path)
		}
	}

	if failed != 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(paths))
	}

	return nil
}

// checkFixture checks a single fixture archive.
func (a App) checkFixture(ctx context.Context, logger *log.Logger, prober *typeprobe.Prober, path string, update bool) error {
	archive, err := txtar.ParseFile(path)
	if err != nil {
		return fmt.Errorf("could not parse fixture: %w", err)
	}

	src, ok := archive.Read(fixtureSnippet)
	if !ok {
		return fmt.Errorf("missing %s", fixtureSnippet)
	}

	result, err := prober.Resolve(ctx, typeprobe.Text(src))
	if err != nil {
		return err
	}

	got := format.Report{Types: result.Types()}

	gotDiagnostics := &strings.Builder{}
	record := diag.SimpleHandler(gotDiagnostics)

	for _, d := range result.Diagnostics() {
		record(d)
	}

	wantFile, wantText, ok := readWant(archive)

	if update {
		logger.Debug("Updating fixture", slog.String("path", path))

		exporter, err := format.Get(strings.TrimPrefix(filepath.Ext(wantFile), "."))
		if err != nil {
			return err
		}

		buf := &bytes.Buffer{}
		if err := exporter.Export(buf, got); err != nil {
			return err
		}

		if err := archive.Write(wantFile, buf.String()); err != nil {
			return err
		}

		if _, had := archive.Read(fixtureDiagnostics); had || gotDiagnostics.Len() != 0 {
			if err := archive.Write(fixtureDiagnostics, gotDiagnostics.String()); err != nil {
				return err
			}
		}

		return txtar.DumpFile(path, archive)
	}

	if !ok {
		return fmt.Errorf("missing %s", fixtureWant)
	}

	var importer format.Importer = format.YAMLImporter{}
	if wantFile == fixtureWantJSON {
		importer = format.JSONImporter{}
	}

	want, err := importer.Import(strings.NewReader(wantText))
	if err != nil {
		return fmt.Errorf("%s: %w", wantFile, err)
	}

	for name := range want.Types {
		if !snippet.IsReserved(name) {
			return fmt.Errorf("%s: %q is not a reserved name and can never be resolved", wantFile, name)
		}
	}

	var problems []error

	if diff := cmp.Diff(want.Types, got.Types, cmpopts.EquateEmpty()); diff != "" {
		problems = append(problems, fmt.Errorf("types mismatch (-want +got):\n%s", diff))
	}

	wantDiagnostics, _ := archive.Read(fixtureDiagnostics)
	if diff := cmp.Diff(wantDiagnostics, gotDiagnostics.String()); diff != "" {
		problems = append(problems, fmt.Errorf("diagnostics mismatch (-want +got):\n%s", diff))
	}

	return errors.Join(problems...)
}

// readWant returns the name and contents of the fixture's expected types, preferring
// want.yaml over want.json. If neither is present, ok is false and name is want.yaml.
func readWant(archive *txtar.Archive) (name, contents string, ok bool) {
	for _, candidate := range []string{fixtureWant, fixtureWantJSON} {
		if text, found := archive.Read(candidate); found {
			return candidate, text, true
		}
	}

	return fixtureWant, "", false
}
