package probe_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/txtar"
	"go.followtheprocess.codes/typeprobe/internal/probe"
	"go.uber.org/goleak"
)

// hermetic returns ConfigOptions that ignore any project configuration and
// never load imports.
func hermetic(dir string) probe.ConfigOptions {
	return probe.ConfigOptions{Dir: dir, Exclusive: true, Imports: "none"}
}

func TestCheckValid(t *testing.T) {
	pattern := filepath.Join("testdata", "check", "valid", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			app := probe.New(false, os.Stdin, stdout, stderr)

			options := probe.CheckOptions{
				Pattern:       filepath.ToSlash(filepath.Join("valid", name)),
				ConfigOptions: hermetic(filepath.Join("testdata", "check")),
			}

			err := app.Check(t.Context(), options)
			test.Ok(t, err)

			test.True(t, strings.Contains(stdout.String(), file+" is valid"), test.Context("stdout: %q", stdout.String()))
			test.Diff(t, stderr.String(), "")
		})
	}
}

func TestCheckValidDir(t *testing.T) {
	pattern := filepath.Join("testdata", "check", "valid", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	app := probe.New(false, os.Stdin, stdout, stderr)

	options := probe.CheckOptions{
		Pattern:       "valid/**/*.txtar",
		ConfigOptions: hermetic(filepath.Join("testdata", "check")),
	}

	err = app.Check(t.Context(), options)
	test.Ok(t, err)

	// A success line for every fixture, in order
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	test.Equal(t, len(lines), len(files))

	for i, file := range files {
		test.True(t, strings.Contains(lines[i], file), test.Context("line %d = %q, wanted %s", i, lines[i], file))
	}

	test.Diff(t, stderr.String(), "")
}

func TestCheckInvalid(t *testing.T) {
	pattern := filepath.Join("testdata", "check", "invalid", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			app := probe.New(false, os.Stdin, stdout, stderr)

			options := probe.CheckOptions{
				Pattern:       filepath.ToSlash(filepath.Join("invalid", name)),
				ConfigOptions: hermetic(filepath.Join("testdata", "check")),
			}

			err := app.Check(t.Context(), options)
			test.Err(t, err)

			test.Equal(t, stdout.String(), "")
			test.True(t, strings.Contains(stderr.String(), file), test.Context("stderr: %q", stderr.String()))
		})
	}
}

func TestCheckNoMatches(t *testing.T) {
	app := probe.New(false, os.Stdin, &bytes.Buffer{}, &bytes.Buffer{})

	options := probe.CheckOptions{
		Pattern:       "nowhere/*.txtar",
		ConfigOptions: hermetic(filepath.Join("testdata", "check")),
	}

	err := app.Check(t.Context(), options)
	test.Err(t, err)
	test.True(t, strings.Contains(err.Error(), "no fixtures match"))
}

func TestCheckBadPattern(t *testing.T) {
	app := probe.New(false, os.Stdin, &bytes.Buffer{}, &bytes.Buffer{})

	options := probe.CheckOptions{
		Pattern:       "[unclosed",
		ConfigOptions: hermetic(filepath.Join("testdata", "check")),
	}

	test.Err(t, app.Check(t.Context(), options))
}

func TestCheckUpdate(t *testing.T) {
	dir := t.TempDir()

	src, err := os.ReadFile(filepath.Join("testdata", "check", "invalid", "unexpected_diagnostics.txtar"))
	test.Ok(t, err)

	file := filepath.Join(dir, "fixture.txtar")
	test.Ok(t, os.WriteFile(file, src, 0o644))

	app := probe.New(false, os.Stdin, &bytes.Buffer{}, &bytes.Buffer{})

	options := probe.CheckOptions{Pattern: "*.txtar", ConfigOptions: hermetic(dir)}

	// Fails to begin with
	test.Err(t, app.Check(t.Context(), options))

	options.Update = true
	test.Ok(t, app.Check(t.Context(), options))

	archive, err := txtar.ParseFile(file)
	test.Ok(t, err)

	want, ok := archive.Read("want.yaml")
	test.True(t, ok, test.Context("want.yaml missing after update"))
	test.True(t, strings.Contains(want, "__0:"), test.Context("want.yaml: %q", want))

	diagnostics, ok := archive.Read("diagnostics.txt")
	test.True(t, ok, test.Context("diagnostics.txt missing after update"))
	test.True(t, strings.Contains(diagnostics, "undefined: nope"), test.Context("diagnostics.txt: %q", diagnostics))

	// And passes afterwards
	options.Update = false
	test.Ok(t, app.Check(t.Context(), options))
}

func TestCheckUnreservedWant(t *testing.T) {
	stderr := &bytes.Buffer{}
	app := probe.New(false, os.Stdin, &bytes.Buffer{}, stderr)

	options := probe.CheckOptions{
		Pattern:       "invalid/unreserved_want.txtar",
		ConfigOptions: hermetic(filepath.Join("testdata", "check")),
	}

	test.Err(t, app.Check(t.Context(), options))
	test.True(t, strings.Contains(stderr.String(), `"Name" is not a reserved name`), test.Context("stderr: %q", stderr.String()))
}

func TestCheckUpdateJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fixture.txtar")

	fixture := "-- snippet.go --\ntype __0 = []nope\n-- want.json --\n{}\n"
	test.Ok(t, os.WriteFile(file, []byte(fixture), 0o644))

	app := probe.New(false, os.Stdin, &bytes.Buffer{}, &bytes.Buffer{})

	options := probe.CheckOptions{Pattern: "*.txtar", Update: true, ConfigOptions: hermetic(dir)}
	test.Ok(t, app.Check(t.Context(), options))

	archive, err := txtar.ParseFile(file)
	test.Ok(t, err)

	_, hasYAML := archive.Read("want.yaml")
	test.False(t, hasYAML, test.Context("update should keep the JSON expectation"))

	want, ok := archive.Read("want.json")
	test.True(t, ok)
	test.True(t, strings.Contains(want, `"__0"`), test.Context("want.json: %q", want))

	diagnostics, ok := archive.Read("diagnostics.txt")
	test.True(t, ok)
	test.True(t, strings.Contains(diagnostics, "undefined: nope"), test.Context("diagnostics.txt: %q", diagnostics))

	options.Update = false
	test.Ok(t, app.Check(t.Context(), options))
}
