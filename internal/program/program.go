// Package program drives the Go type checker over a snippet, producing a checked
// [Program] that the resolver and diagnostics collector consume.
package program

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"strconv"

	"go.followtheprocess.codes/typeprobe/internal/host"
	"go.followtheprocess.codes/typeprobe/internal/options"
)

// Program is a type checked snippet.
//
// A Program is immutable once built and is safe to read concurrently.
type Program struct {
	// Host is the compilation host the program was built from.
	Host *host.Host

	// Virtual is the virtual source unit holding the snippet.
	Virtual *ast.File

	// Package is the checked package, it is never nil even if the snippet
	// is invalid.
	Package *types.Package

	// Info is the type information recorded while checking.
	Info *types.Info

	// Files are all the root files, the virtual file first followed by any
	// included files in configuration order.
	Files []*ast.File

	// TypeErrors are the errors reported by the type checker, in the order
	// they were reported.
	TypeErrors []types.Error

	// Imports are the import paths declared across all the root files.
	Imports []string

	// Config is the configuration the program was built with.
	Config options.Config
}

// Fset returns the file set the program's files were parsed into.
func (p *Program) Fset() *token.FileSet {
	return p.Host.Fset()
}

// Build parses and type checks the snippet served by h using cfg.
//
// Problems with the snippet itself (syntax errors, type errors, failed imports)
// never cause Build to fail, they are recorded on the program. An error is only
// returned if the program could not be built at all: ctx is cancelled, cfg is
// invalid or an included file cannot be read or declares a different package.
func Build(ctx context.Context, cfg options.Config, h *host.Host) (*Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	virtual, err := h.File(host.VirtualName, host.Mode)
	if err != nil {
		return nil, err
	}

	files := []*ast.File{virtual}

	for _, include := range cfg.Include {
		file, err := h.File(include, host.Mode)
		if err != nil {
			return nil, fmt.Errorf("could not load included file: %w", err)
		}

		if err := samePackage(virtual, file, include); err != nil {
			return nil, err
		}

		files = append(files, file)
	}

	imports := importPaths(files)

	importer, err := host.NewImporter(ctx, cfg, h.Fset(), imports)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var typeErrors []types.Error

	conf := types.Config{
		GoVersion:                cfg.LangVersion(),
		Importer:                 importer,
		Sizes:                    cfg.Sizes(),
		DisableUnusedImportCheck: !cfg.Strict,
		Error: func(err error) {
			var typeErr types.Error
			if errors.As(err, &typeErr) {
				typeErrors = append(typeErrors, typeErr)
			}
		},
	}

	info := &types.Info{
		Types:  make(map[ast.Expr]types.TypeAndValue),
		Defs:   make(map[*ast.Ident]types.Object),
		Scopes: make(map[ast.Node]*types.Scope),
	}

	pkg, _ := conf.Check(cfg.Package, h.Fset(), checkable(files), info) //nolint:errcheck // Every error is collected by conf.Error

	return &Program{
		Host:       h,
		Virtual:    virtual,
		Package:    pkg,
		Info:       info,
		Files:      files,
		TypeErrors: typeErrors,
		Imports:    imports,
		Config:     cfg,
	}, nil
}

// samePackage returns an error if the included file declares a different package
// to the snippet. Files without a usable package clause are left to the checker.
func samePackage(virtual, file *ast.File, name string) error {
	if virtual == nil || virtual.Name == nil || virtual.Name.Name == "" {
		return nil
	}

	if file == nil || file.Name == nil || file.Name.Name == "" {
		return nil
	}

	if file.Name.Name != virtual.Name.Name {
		return fmt.Errorf("included file %s declares package %s, but the snippet is in package %s", name, file.Name.Name, virtual.Name.Name)
	}

	return nil
}

// checkable filters out files whose package clause could not be parsed, the
// syntax errors for them are already recorded by the host.
func checkable(files []*ast.File) []*ast.File {
	return slices.DeleteFunc(slices.Clone(files), func(file *ast.File) bool {
		return file == nil || file.Name == nil || file.Name.Name == ""
	})
}

// importPaths returns the sorted, de-duplicated import paths declared across files,
// excluding the pseudo packages that never need loading.
func importPaths(files []*ast.File) []string {
	var paths []string

	for _, file := range files {
		if file == nil {
			continue
		}

		for _, spec := range file.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err != nil || path == "unsafe" || path == "C" {
				continue
			}

			paths = append(paths, path)
		}
	}

	slices.Sort(paths)

	return slices.Compact(paths)
}
