package options_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/typeprobe/internal/options"
	"go.uber.org/goleak"
)

// writeFile writes contents to name inside dir, failing the test on error.
func writeFile(tb testing.TB, dir, name, contents string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	test.Ok(tb, os.MkdirAll(filepath.Dir(path), 0o755))
	test.Ok(tb, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestDefault(t *testing.T) {
	cfg := options.Default()

	test.Equal(t, cfg.GOOS, runtime.GOOS)
	test.Equal(t, cfg.GOARCH, runtime.GOARCH)
	test.Equal(t, cfg.Package, options.DefaultPackage)
	test.Equal(t, cfg.Imports, options.ImportPackages)
	test.Equal(t, cfg.Render, options.RenderAlias)
	test.True(t, cfg.Strict)
	test.Ok(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string           // Name of the test case
		errMsg  string           // Substring expected in the error, "" means valid
		options []options.Option // Overrides applied to Default
	}{
		{
			name: "default",
		},
		{
			name:    "go version without prefix",
			options: []options.Option{options.GoVersion("1.22")},
		},
		{
			name:    "go version with prefix",
			options: []options.Option{options.GoVersion("go1.23")},
		},
		{
			name:    "bad go version",
			options: []options.Option{options.GoVersion("one point two")},
			errMsg:  `invalid go version "one point two"`,
		},
		{
			name:    "bad goarch",
			options: []options.Option{options.Platform("linux", "z80")},
			errMsg:  `unsupported goarch "z80"`,
		},
		{
			name:    "bad package",
			options: []options.Option{options.Package("not a package")},
			errMsg:  `invalid package name "not a package"`,
		},
		{
			name:    "blank package",
			options: []options.Option{options.Package("_")},
			errMsg:  `invalid package name "_"`,
		},
		{
			name:    "bad imports",
			options: []options.Option{options.Imports("magic")},
			errMsg:  `invalid imports mode "magic"`,
		},
		{
			name:    "bad render",
			options: []options.Option{options.Render("pretty")},
			errMsg:  `invalid render mode "pretty"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := options.Exclusive(tt.options...).Validate()
			if tt.errMsg == "" {
				test.Ok(t, err)
				return
			}

			test.Err(t, err)
			test.True(t, strings.Contains(err.Error(), tt.errMsg), test.Context("got %q, wanted it to contain %q", err, tt.errMsg))
		})
	}
}

func TestLangVersion(t *testing.T) {
	test.Equal(t, options.Exclusive().LangVersion(), "")
	test.Equal(t, options.Exclusive(options.GoVersion("1.22")).LangVersion(), "go1.22")
	test.Equal(t, options.Exclusive(options.GoVersion("go1.24")).LangVersion(), "go1.24")
}

func TestLoad(t *testing.T) {
	t.Run("toml merged with overrides", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.TOMLFile, "go = \"1.22\"\nrender = \"underlying\"\ntags = [\"integration\"]\n")

		nested := filepath.Join(dir, "some", "nested", "dir")
		test.Ok(t, os.MkdirAll(nested, 0o755))

		cfg, err := options.Load(nested, options.Strict(false), options.GoVersion("1.23"))
		test.Ok(t, err)

		test.Equal(t, cfg.GoVersion, "1.23", test.Context("caller supplied keys should win"))
		test.Equal(t, cfg.Render, options.RenderUnderlying)
		test.Equal(t, strings.Join(cfg.Tags, ","), "integration")
		test.Equal(t, cfg.Imports, options.ImportPackages, test.Context("absent keys should keep defaults"))
		test.False(t, cfg.Strict)
		test.Equal(t, cfg.Dir, dir)
	})

	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.YAMLFile, "go: \"1.21\"\nimports: none\npackage: snippets\n")

		cfg, err := options.Load(dir)
		test.Ok(t, err)

		test.Equal(t, cfg.GoVersion, "1.21")
		test.Equal(t, cfg.Imports, options.ImportNone)
		test.Equal(t, cfg.Package, "snippets")
	})

	t.Run("toml preferred over yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.TOMLFile, "package = \"fromtoml\"\n")
		writeFile(t, dir, options.YAMLFile, "package: fromyaml\n")

		cfg, err := options.Load(dir)
		test.Ok(t, err)
		test.Equal(t, cfg.Package, "fromtoml")
	})

	t.Run("go version from go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "module example.com/probe\n\ngo 1.22.3\n")
		writeFile(t, dir, options.TOMLFile, "")

		cfg, err := options.Load(dir)
		test.Ok(t, err)
		test.Equal(t, cfg.GoVersion, "1.22.3")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := options.Load(t.TempDir())
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigNotFound), test.Context("wrong error: %v", err))
	})

	t.Run("malformed toml", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, options.TOMLFile, "go = \"1.22\"\nrender = \n")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigParse), test.Context("wrong error: %v", err))

		var perr *options.ParseError
		test.True(t, errors.As(err, &perr))
		test.Equal(t, perr.Path, path)
		test.True(t, perr.Line > 0, test.Context("expected a line number in %v", perr))
	})

	t.Run("unknown key", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.TOMLFile, "strictness = true\n")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigParse))
		test.True(t, strings.Contains(err.Error(), "strictness"), test.Context("got %v", err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, options.YAMLFile, "go: \"1.22\"\ntags: [a,")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigParse), test.Context("wrong error: %v", err))

		var perr *options.ParseError
		test.True(t, errors.As(err, &perr))
		test.Equal(t, perr.Path, path)
		test.True(t, perr.Line > 0, test.Context("expected a line number in %v", perr))
		test.True(t, strings.Contains(err.Error(), "did not find expected"), test.Context("got %v", err))
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, options.YAMLFile, "go: \"1.22\"\nimprots: none\n")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigParse), test.Context("wrong error: %v", err))
		test.True(t, strings.Contains(err.Error(), "improts"), test.Context("got %v", err))

		var perr *options.ParseError
		test.True(t, errors.As(err, &perr))
		test.Equal(t, perr.Path, path)
		test.Equal(t, perr.Line, 2)
		test.Equal(t, perr.Column, 1)
	})

	t.Run("empty yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.YAMLFile, "")

		cfg, err := options.Load(dir)
		test.Ok(t, err)
		test.Equal(t, cfg.Imports, options.ImportPackages)
	})

	t.Run("malformed go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "module \"example.com/unterminated\n")
		writeFile(t, dir, options.TOMLFile, "")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, errors.Is(err, options.ErrConfigParse), test.Context("wrong error: %v", err))
	})

	t.Run("invalid value", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.TOMLFile, "render = \"sideways\"\n")

		_, err := options.Load(dir)
		test.Err(t, err)
		test.True(t, strings.Contains(err.Error(), "sideways"))
	})
}

func TestStore(t *testing.T) {
	t.Run("exclusive", func(t *testing.T) {
		dir := t.TempDir()
		store := options.NewStore(dir)

		set, err := store.Set(true, options.Render(options.RenderUnderlying), options.Imports(options.ImportNone))
		test.Ok(t, err)

		got, err := store.Get()
		test.Ok(t, err)

		test.Equal(t, got.Render, options.RenderUnderlying)
		test.Equal(t, got.Imports, options.ImportNone)
		test.Equal(t, got.Dir, dir, test.Context("store directory should be used when not overridden"))
		test.Equal(t, got.String(), set.String())

		other := t.TempDir()
		overridden, err := store.Set(true, options.Dir(other))
		test.Ok(t, err)
		test.Equal(t, overridden.Dir, other)
	})

	t.Run("lazy get merges project config", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, options.TOMLFile, "package = \"lazy\"\n")

		store := options.NewStore(dir)

		got, err := store.Get()
		test.Ok(t, err)
		test.Equal(t, got.Package, "lazy")
	})

	t.Run("merge without project config", func(t *testing.T) {
		store := options.NewStore(t.TempDir())

		_, err := store.Set(false, options.Strict(false))
		test.True(t, errors.Is(err, options.ErrConfigNotFound))

		_, err = store.Get()
		test.True(t, errors.Is(err, options.ErrConfigNotFound))
	})

	t.Run("failed set keeps previous", func(t *testing.T) {
		store := options.NewStore(t.TempDir())

		_, err := store.Set(true, options.Package("before"))
		test.Ok(t, err)

		_, err = store.Set(true, options.Imports("nonsense"))
		test.Err(t, err)

		got, err := store.Get()
		test.Ok(t, err)
		test.Equal(t, got.Package, "before")
	})

	t.Run("concurrent", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		store := options.NewStore(t.TempDir())
		names := []string{"alpha", "beta", "gamma", "delta"}

		var wg sync.WaitGroup
		for _, name := range names {
			wg.Go(func() {
				_, err := store.Set(true, options.Package(name))
				test.Ok(t, err)
			})
		}

		wg.Wait()

		got, err := store.Get()
		test.Ok(t, err)
		test.True(t, strings.Contains(strings.Join(names, " "), got.Package), test.Context("got %q", got.Package))
	})
}

func TestConfigString(t *testing.T) {
	cfg := options.Exclusive(
		options.GoVersion("1.24"),
		options.Platform("linux", "amd64"),
		options.Imports(options.ImportNone),
	)

	got := cfg.String()

	test.True(t, strings.Contains(got, `go = "1.24"`), test.Context("got %s", got))
	test.True(t, strings.Contains(got, `imports = "none"`), test.Context("got %s", got))
	test.True(t, strings.Contains(got, `strict = true`), test.Context("got %s", got))
	test.False(t, strings.Contains(got, "Dir"), test.Context("dir should never be rendered"))
}
