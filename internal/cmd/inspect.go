package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/typeprobe/internal/probe"
)

const inspectLong = `
Each expression given with '--expr' is declared as an alias in a
generated snippet and its fully expanded type printed alongside it.

Expressions may refer to anything declared in the file given with
'--preamble', which may also import packages.

If no expressions are given, you will be prompted for one.
`

// inspect returns the inspect subcommand.
func inspect() (*cli.Command, error) {
	var options probe.InspectOptions

	opts := []cli.Option{
		cli.Short("Resolve one or more type expressions"),
		cli.Long(inspectLong),
		cli.Flag(&options.Exprs, "expr", 'e', "Type expression(s) to inspect"),
		cli.Flag(&options.Preamble, "preamble", flag.NoShortHand, "Go file the expressions may refer to"),
		cli.Flag(&options.Format, "format", 'f', "Output format, one of (text|json|yaml|toml)", cli.FlagDefault("text")),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := probe.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Inspect(ctx, options)
		}),
	}

	return cli.New("inspect", append(opts, configFlags(&options.ConfigOptions)...)...)
}
