package host_test

import (
	"context"
	"errors"
	"go/types"
	"io/fs"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/typeprobe/internal/host"
	"go.followtheprocess.codes/typeprobe/internal/options"
)

func TestFileVirtualIsCached(t *testing.T) {
	h := host.New("type __1 = string\n", "probe", host.Map{})

	first, err := h.File(host.VirtualName, host.Mode)
	test.Ok(t, err)

	second, err := h.File(host.VirtualName, host.Mode)
	test.Ok(t, err)

	test.True(t, first == second, test.Context("virtual file was parsed twice"))
	test.Equal(t, h.Requests(host.VirtualName), 2)
	test.Equal(t, first.Name.Name, "probe")
}

func TestFileHeader(t *testing.T) {
	tests := []struct {
		name    string // Name of the test case
		code    string // Snippet code
		pkg     string // Expected package name of the parsed file
		header  bool   // Whether a header should have been synthesized
		wantPos string // Expected position of the first declaration
	}{
		{
			name:    "no package clause",
			code:    "type __1 = string\n",
			pkg:     "probe",
			header:  true,
			wantPos: host.VirtualName + ":1:1",
		},
		{
			name:    "leading blank lines",
			code:    "\n\ntype __1 = string\n",
			pkg:     "probe",
			header:  true,
			wantPos: host.VirtualName + ":3:1",
		},
		{
			name:    "own package clause",
			code:    "package mine\n\ntype __1 = string\n",
			pkg:     "mine",
			header:  false,
			wantPos: host.VirtualName + ":3:1",
		},
		{
			name:    "package clause after a comment",
			code:    "// Package mine.\npackage mine\n\ntype __1 = string\n",
			pkg:     "mine",
			header:  false,
			wantPos: host.VirtualName + ":4:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := host.New(tt.code, "probe", host.Map{})

			file, err := h.File(host.VirtualName, host.Mode)
			test.Ok(t, err)

			test.Equal(t, file.Name.Name, tt.pkg)
			test.Equal(t, h.HeaderLen() > 0, tt.header)
			test.Equal(t, h.Code(), tt.code)
			test.Equal(t, len(h.ParseErrors(host.VirtualName)), 0)

			test.True(t, len(file.Decls) > 0, test.Context("no declarations parsed"))
			pos := h.Fset().Position(file.Decls[0].Pos())
			test.Equal(t, pos.String(), tt.wantPos)
			test.Equal(t, pos.Offset-h.HeaderLen(), len(tt.code)-len("type __1 = string\n"))
		})
	}
}

func TestFileSyntaxErrors(t *testing.T) {
	h := host.New("type __1 = \n", "probe", host.Map{})

	file, err := h.File(host.VirtualName, host.Mode)
	test.Ok(t, err)
	test.True(t, file != nil, test.Context("partial file should still be returned"))

	errs := h.ParseErrors(host.VirtualName)
	test.True(t, len(errs) > 0, test.Context("expected syntax errors"))
	test.Equal(t, errs[0].Pos.Filename, host.VirtualName)
}

func TestFileDelegates(t *testing.T) {
	provider := host.Map{
		"ambient.go": "package probe\n\ntype Pair[K comparable, V any] struct{ Key K; Val V }\n",
	}

	h := host.New("type __1 = Pair[string, int]\n", "probe", provider)

	file, err := h.File("ambient.go", host.Mode)
	test.Ok(t, err)
	test.Equal(t, file.Name.Name, "probe")
	test.Equal(t, h.Requests("ambient.go"), 1)

	// Non virtual files are parsed every time
	again, err := h.File("ambient.go", host.Mode)
	test.Ok(t, err)
	test.True(t, file != again, test.Context("delegated files should not be cached"))

	_, err = h.File("missing.go", host.Mode)
	test.Err(t, err)
	test.True(t, errors.Is(err, fs.ErrNotExist), test.Context("wrong error: %v", err))
	test.Equal(t, h.Requests("missing.go"), 1)
}

func TestOSProvider(t *testing.T) {
	dir := t.TempDir()
	provider := host.OS{Dir: dir}

	_, err := provider.Source("nope.go")
	test.Err(t, err)
	test.True(t, errors.Is(err, fs.ErrNotExist), test.Context("wrong error: %v", err))
}

func TestImporterDisabled(t *testing.T) {
	cfg := options.Exclusive(options.Imports(options.ImportNone))

	imp, err := host.NewImporter(context.Background(), cfg, nil, []string{"strings"})
	test.Ok(t, err)

	_, err = imp.Import("strings")
	test.Err(t, err)
	test.True(t, errors.Is(err, host.ErrImportsDisabled), test.Context("wrong error: %v", err))

	pkg, err := imp.Import("unsafe")
	test.Ok(t, err)
	test.True(t, pkg == types.Unsafe, test.Context("unsafe should always be importable"))
}

func TestImporterUnknownMode(t *testing.T) {
	cfg := options.Exclusive(options.Imports("carrier pigeon"))

	_, err := host.NewImporter(context.Background(), cfg, nil, nil)
	test.Err(t, err)
}

func TestImporterPackages(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}

	cfg := options.Exclusive(options.Dir(t.TempDir()))

	imp, err := host.NewImporter(context.Background(), cfg, nil, []string{"strings", "nosuchpkg"})
	test.Ok(t, err)

	pkg, err := imp.Import("strings")
	test.Ok(t, err)
	test.Equal(t, pkg.Name(), "strings")
	test.True(t, pkg.Scope().Lookup("Builder") != nil, test.Context("strings.Builder missing"))

	_, err = imp.Import("nosuchpkg")
	test.Err(t, err)
	test.True(t, errors.Is(err, host.ErrImportNotFound), test.Context("wrong error: %v", err))

	_, err = imp.Import("fmt")
	test.Err(t, err)
	test.True(t, errors.Is(err, host.ErrImportNotFound), test.Context("wrong error: %v", err))
}
