package probe

import (
	"fmt"

	"go.followtheprocess.codes/typeprobe/internal/format"
)

// ShowConfigOptions are the options passed to the config subcommand.
type ShowConfigOptions struct {
	// Format is the output format, text is the same as toml.
	Format string

	ConfigOptions
}

// ShowConfig implements the config subcommand, printing the active configuration.
func (a App) ShowConfig(options ShowConfigOptions) error {
	logger := a.logger.Prefixed("config")

	prober, err := a.prober(logger, options.ConfigOptions)
	if err != nil {
		return err
	}

	cfg, err := prober.Options()
	if err != nil {
		return err
	}

	if err := format.Encode(a.stdout, options.Format, cfg); err != nil {
		return fmt.Errorf("could not show configuration: %w", err)
	}

	return nil
}
