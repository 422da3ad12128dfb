// Package probe implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package probe

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/typeprobe"
	"go.followtheprocess.codes/typeprobe/internal/diag"
	"go.followtheprocess.codes/typeprobe/internal/format"
	"go.followtheprocess.codes/typeprobe/internal/host"
)

// stdinName is the file name that reads the snippet from stdin.
const stdinName = "-"

// App represents the typeprobe program.
type App struct {
	stdin  io.Reader   // Snippets named "-" are read from here
	stdout io.Writer   // Normal program output is written here
	stderr io.Writer   // Logs, diagnostics and errors are written here
	logger *log.Logger // The logger for the application
}

// New returns a new [App].
func New(debug bool, stdin io.Reader, stdout, stderr io.Writer) App {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	return App{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, log.WithLevel(level)),
	}
}

// ConfigOptions are the configuration flags shared by every subcommand, they
// override the project configuration file.
type ConfigOptions struct {
	// Dir is the directory to discover the project configuration from and to
	// load imports from, empty means the working directory.
	Dir string

	// GoVersion overrides the language version if set.
	GoVersion string

	// Imports overrides the import mode if set.
	Imports string

	// Render overrides the render mode if set.
	Render string

	// Tags are extra build tags.
	Tags []string

	// Include are extra Go files compiled alongside every snippet.
	Include []string

	// Exclusive ignores the project configuration file entirely.
	Exclusive bool

	// Lenient drops declaration level diagnostics such as unused variables.
	Lenient bool

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the ConfigOptions is valid, returning an error
// if it's not.
//
// nil means the options are valid.
func (c ConfigOptions) Validate() error {
	switch c.Imports {
	case "", string(typeprobe.ImportPackages), string(typeprobe.ImportSource), string(typeprobe.ImportNone):
	default:
		return fmt.Errorf("invalid option for --imports %q, allowed values are 'packages', 'source', 'none'", c.Imports)
	}

	switch c.Render {
	case "", string(typeprobe.RenderAlias), string(typeprobe.RenderUnderlying):
	default:
		return fmt.Errorf("invalid option for --render %q, allowed values are 'alias', 'underlying'", c.Render)
	}

	return nil
}

// overrides returns the options that were explicitly set as config overrides.
func (c ConfigOptions) overrides() []typeprobe.Option {
	var overrides []typeprobe.Option

	if c.Dir != "" {
		overrides = append(overrides, typeprobe.Dir(c.Dir))
	}

	if c.GoVersion != "" {
		overrides = append(overrides, typeprobe.GoVersion(c.GoVersion))
	}

	if c.Imports != "" {
		overrides = append(overrides, typeprobe.Imports(typeprobe.ImportMode(c.Imports)))
	}

	if c.Render != "" {
		overrides = append(overrides, typeprobe.Render(typeprobe.RenderMode(c.Render)))
	}

	if len(c.Tags) != 0 {
		overrides = append(overrides, typeprobe.Tags(c.Tags...))
	}

	if len(c.Include) != 0 {
		overrides = append(overrides, typeprobe.Include(c.Include...))
	}

	if c.Lenient {
		overrides = append(overrides, typeprobe.Strict(false))
	}

	return overrides
}

// prober returns a [typeprobe.Prober] with the configuration from options, falling
// back to the defaults if there is no project configuration file.
func (a App) prober(logger *log.Logger, options ConfigOptions) (*typeprobe.Prober, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	prober := typeprobe.New(typeprobe.WithLogger(logger), typeprobe.WithDir(options.Dir))

	cfg, err := prober.SetOptions(options.Exclusive, options.overrides()...)
	if errors.Is(err, typeprobe.ErrConfigNotFound) {
		logger.Debug("No project configuration file, using defaults")
		cfg, err = prober.SetOptions(true, options.overrides()...)
	}

	if err != nil {
		return nil, err
	}

	logger.Debug(
		"Active configuration",
		slog.String("go", cfg.GoVersion),
		slog.String("imports", string(cfg.Imports)),
		slog.String("render", string(cfg.Render)),
		slog.Bool("strict", cfg.Strict),
	)

	return prober, nil
}

// read reads the snippet source from file, "-" means stdin.
func (a App) read(file string) (string, error) {
	if file == stdinName {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("could not read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("could not read snippet: %w", err)
	}

	return string(data), nil
}

// report exports a resolved snippet to stdout, diagnostic positions are renamed
// to file.
func (a App) report(file, name string, result *typeprobe.Result) error {
	diagnostics := result.Diagnostics()
	for i := range diagnostics {
		if diagnostics[i].Position.Name == host.VirtualName {
			diagnostics[i].Position.Name = file
		}
	}

	report := format.Report{Types: result.Types(), Names: result.Names()}

	if err := a.export(name, report, diagnostics, result.Code()); err != nil {
		return err
	}

	if result.Err() != nil {
		return fmt.Errorf("%s: %w", file, typeprobe.ErrDiagnostics)
	}

	return nil
}

// export writes report to stdout in the format called name.
//
// Structured formats carry the diagnostics in the report, with plain text they
// are shown on stderr against the source they came from instead.
func (a App) export(name string, report format.Report, diagnostics []diag.Diagnostic, src string) error {
	exporter, err := format.Get(name)
	if err != nil {
		return err
	}

	if structured(name) {
		report.Diagnostics = diagnostics
	} else {
		handler := diag.PrettyConsoleHandler(a.stderr, src)
		for _, d := range diagnostics {
			handler(d)
		}
	}

	if err := exporter.Export(a.stdout, report); err != nil {
		return fmt.Errorf("could not export report: %w", err)
	}

	return nil
}

// structured reports whether the format called name is a structured format.
func structured(name string) bool {
	return slices.Contains([]string{format.JSON, format.YAML, format.TOML}, name)
}
