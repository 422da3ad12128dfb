package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/typeprobe/internal/probe"
)

// config returns the config subcommand.
func config() (*cli.Command, error) {
	var options probe.ShowConfigOptions

	opts := []cli.Option{
		cli.Short("Show the active configuration"),
		cli.Flag(&options.Format, "format", 'f', "Output format, one of (toml|json|yaml)", cli.FlagDefault("toml")),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := probe.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.ShowConfig(options)
		}),
	}

	return cli.New("config", append(opts, configFlags(&options.ConfigOptions)...)...)
}
