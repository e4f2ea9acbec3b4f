package command

import (
	"context"
	"fmt"

	"github.com/anchore/clio"
	"github.com/spf13/cobra"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/cmd/gaesdk/cli/option"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/sdk"
)

type InstallConfig struct {
	Config           string `json:"config" yaml:"config" mapstructure:"config"`
	option.AppConfig `json:"" yaml:",inline" mapstructure:",squash"`
}

func Install(app clio.Application) *cobra.Command {
	cfg := &InstallConfig{
		AppConfig: option.DefaultAppConfig(),
	}

	var names []string

	return app.SetupCommand(&cobra.Command{
		Use:   "install [PART...]",
		Short: "Fetch the App Engine SDK and extract it into each part's destination",
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			names = args
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), *cfg, names)
		},
	}, cfg)
}

func runInstall(ctx context.Context, cfg InstallConfig, names []string) error {
	names, err := cfg.Parts.Select(names)
	if err != nil {
		return err
	}

	// get the current store state
	store, err := gaesdk.NewStore(cfg.PartsDirectory)
	if err != nil {
		return err
	}

	// parts are installed one after another; the first failure stops the run
	for _, name := range names {
		stepCfg, err := cfg.Parts.StepConfig(name, cfg.PartsDirectory)
		if err != nil {
			return err
		}

		inst, err := sdk.Run(ctx, name, sdk.NewStep(stepCfg), store)
		if err != nil {
			return fmt.Errorf("failed to install part %q: %w", name, err)
		}

		bus.Notify(fmt.Sprintf("installed part %q into %s (%d files)", name, inst.Destination, len(inst.Files)))
	}

	return nil
}
