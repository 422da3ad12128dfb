package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/typeprobe/internal/probe"
)

const resolveLong = `
Every type declared in the snippet with a name starting with '__' is
resolved to the text of its fully expanded type and printed.

Aliases are expanded at every depth, and types declared with the
reserved prefix but not as an alias are expanded to their underlying
type. Use '--name' to resolve any other declared type names instead.

Compile errors are printed to stderr (or included in the output for
structured formats) and the command fails, but every name that could
be resolved is still printed.

Pass '-' as the file to read the snippet from stdin.
`

// resolve returns the resolve subcommand.
func resolve() (*cli.Command, error) {
	var options probe.ResolveOptions

	opts := []cli.Option{
		cli.Short("Resolve the reserved types declared in a snippet"),
		cli.Long(resolveLong),
		cli.Arg(&options.File, "file", "Path to the snippet, '-' reads stdin"),
		cli.Flag(&options.Format, "format", 'f', "Output format, one of (text|json|yaml|toml)", cli.FlagDefault("text")),
		cli.Flag(&options.Names, "name", 'n', "Specific type name(s) to resolve"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := probe.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Resolve(ctx, options)
		}),
	}

	return cli.New("resolve", append(opts, configFlags(&options.ConfigOptions)...)...)
}
