package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/typeprobe/internal/probe"
)

const checkLong = `
Fixtures are txtar archives containing a 'snippet.go', the types its
reserved names should resolve to in 'want.yaml' and optionally the exact
diagnostics it should produce in 'diagnostics.txt'.

The pattern is a glob relative to '--dir' supporting '**' to match any
number of directories, by default every .txtar file is checked.

Pass '--update' to rewrite the expectations in every fixture with the
actual results.
`

// check returns the check subcommand.
func check() (*cli.Command, error) {
	var options probe.CheckOptions

	opts := []cli.Option{
		cli.Short("Check snippet fixtures resolve as expected"),
		cli.Long(checkLong),
		cli.Arg(&options.Pattern, "pattern", "Glob matching the fixtures", cli.ArgDefault(probe.DefaultCheckPattern)),
		cli.Flag(&options.Update, "update", flag.NoShortHand, "Update fixture expectations"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := probe.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Check(ctx, options)
		}),
	}

	return cli.New("check", append(opts, configFlags(&options.ConfigOptions)...)...)
}
