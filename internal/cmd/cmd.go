// Package cmd implements typeprobe's CLI.
package cmd

import (
	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/typeprobe/internal/probe"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build builds and returns the typeprobe CLI.
func Build() (*cli.Command, error) {
	return cli.New(
		"typeprobe",
		cli.Short("Resolve the types of inline Go snippets"),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Resolve every reserved name declared in a snippet", "typeprobe resolve ./snippet.go"),
		cli.Example("Resolve a snippet from stdin as JSON", "echo 'type __0 = []error' | typeprobe resolve - --format json"),
		cli.Example("Inspect a type expression", "typeprobe inspect -e 'map[string][]int'"),
		cli.Example("Check every fixture under the current directory", "typeprobe check"),
		cli.Example("Show the active configuration", "typeprobe config"),
		cli.SubCommands(resolve, inspect, check, config),
	)
}

// configFlags returns the options declaring the configuration flags shared by every
// subcommand, bound to options.
func configFlags(options *probe.ConfigOptions) []cli.Option {
	return []cli.Option{
		cli.Flag(&options.Dir, "dir", flag.NoShortHand, "Directory to load configuration and imports from"),
		cli.Flag(&options.GoVersion, "go", flag.NoShortHand, "Go language version e.g. 1.24"),
		cli.Flag(&options.Imports, "imports", flag.NoShortHand, "Import mode, one of (packages|source|none)"),
		cli.Flag(&options.Render, "render", flag.NoShortHand, "Render mode, one of (alias|underlying)"),
		cli.Flag(&options.Tags, "tag", flag.NoShortHand, "Build tag(s) used when loading imports"),
		cli.Flag(&options.Include, "include", flag.NoShortHand, "Go file(s) compiled alongside every snippet"),
		cli.Flag(&options.Exclusive, "exclusive", flag.NoShortHand, "Ignore the project configuration file"),
		cli.Flag(&options.Lenient, "lenient", flag.NoShortHand, "Drop declaration level diagnostics e.g. unused variables"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
	}
}
