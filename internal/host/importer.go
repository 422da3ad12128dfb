package host

import (
	"context"
	"errors"
	"fmt"
	"go/importer"
	"go/token"
	"go/types"
	"os"
	"strings"

	"go.followtheprocess.codes/typeprobe/internal/options"
	"golang.org/x/tools/go/packages"
)

var (
	// ErrImportsDisabled is returned by the importer for every import when imports
	// are disabled.
	ErrImportsDisabled = errors.New("imports are disabled")

	// ErrImportNotFound is returned when an import path cannot be resolved to
	// a package.
	ErrImportNotFound = errors.New("cannot find package")
)

// NewImporter returns a [types.Importer] for the import mode in cfg.
//
// For [options.ImportPackages] every path in paths is loaded up front with a single
// call to [packages.Load], subsequent imports are served from what was loaded. The
// returned error is only non-nil if loading could not be attempted at all, packages
// that fail to load are reported when they are imported.
func NewImporter(ctx context.Context, cfg options.Config, fset *token.FileSet, paths []string) (types.Importer, error) {
	switch cfg.Imports {
	case options.ImportNone:
		return disabled{}, nil
	case options.ImportSource:
		return sourceImporter{fallback: importer.ForCompiler(fset, "source", nil)}, nil
	case options.ImportPackages, "":
		return preload(ctx, cfg, paths)
	default:
		return nil, fmt.Errorf("unknown import mode %q", cfg.Imports)
	}
}

// disabled is a [types.Importer] that refuses everything but unsafe.
type disabled struct{}

func (disabled) Import(path string) (*types.Package, error) {
	if path == "unsafe" {
		return types.Unsafe, nil
	}

	return nil, ErrImportsDisabled
}

// sourceImporter type checks imported packages from source with go/importer.
type sourceImporter struct {
	fallback types.Importer
}

func (s sourceImporter) Import(path string) (*types.Package, error) {
	pkg, err := s.fallback.Import(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportNotFound, err)
	}

	return pkg, nil
}

// packagesImporter serves packages preloaded by go/packages.
type packagesImporter struct {
	packages map[string]*types.Package // Successfully loaded packages by import path
	errs     map[string]error          // Load failures by import path
}

func (p *packagesImporter) Import(path string) (*types.Package, error) {
	if path == "unsafe" {
		return types.Unsafe, nil
	}

	if pkg, ok := p.packages[path]; ok {
		return pkg, nil
	}

	if err, ok := p.errs[path]; ok {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s was not loaded", ErrImportNotFound, path)
}

// preload loads every path with one call to packages.Load.
func preload(ctx context.Context, cfg options.Config, paths []string) (*packagesImporter, error) {
	imp := &packagesImporter{
		packages: make(map[string]*types.Package),
		errs:     make(map[string]error),
	}

	if len(paths) == 0 {
		return imp, nil
	}

	env := os.Environ()
	if cfg.GOOS != "" {
		env = append(env, "GOOS="+cfg.GOOS)
	}

	if cfg.GOARCH != "" {
		env = append(env, "GOARCH="+cfg.GOARCH)
	}

	loadConfig := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedTypes,
		Dir:     cfg.Dir,
		Env:     env,
	}

	if len(cfg.Tags) != 0 {
		loadConfig.BuildFlags = []string{"-tags=" + strings.Join(cfg.Tags, ",")}
	}

	pkgs, err := packages.Load(loadConfig, paths...)
	if err != nil {
		return nil, fmt.Errorf("could not load imports: %w", err)
	}

	for _, pkg := range pkgs {
		keys := []string{pkg.ID}
		if pkg.PkgPath != "" && pkg.PkgPath != pkg.ID {
			keys = append(keys, pkg.PkgPath)
		}

		for _, key := range keys {
			switch {
			case len(pkg.Errors) != 0:
				imp.errs[key] = fmt.Errorf("%w: %s", ErrImportNotFound, pkg.Errors[0].Msg)
			case pkg.Types == nil:
				imp.errs[key] = fmt.Errorf("%w: %s has no type information", ErrImportNotFound, key)
			default:
				imp.packages[key] = pkg.Types
			}
		}
	}

	return imp, nil
}
