package command

import (
	"context"
	"fmt"

	"github.com/anchore/clio"
	"github.com/spf13/cobra"

	"github.com/appfy/gaesdk/cmd/gaesdk/cli/option"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/sdk/updatecheck"
)

type ResolveConfig struct {
	Config           string `json:"config" yaml:"config" mapstructure:"config"`
	ReleaseOnly      bool   `json:"release-only" yaml:"release-only" mapstructure:"release-only"`
	option.AppConfig `json:"" yaml:",inline" mapstructure:",squash"`
}

func (o *ResolveConfig) AddFlags(flags clio.FlagSet) {
	flags.BoolVarP(&o.ReleaseOnly, "release-only", "r", "Show only the release identifier instead of the download URL")
}

func Resolve(app clio.Application) *cobra.Command {
	cfg := &ResolveConfig{
		AppConfig: option.DefaultAppConfig(),
	}

	var name string

	return app.SetupCommand(&cobra.Command{
		Use:   "resolve [PART]",
		Short: "Show the download URL of the latest App Engine SDK release",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			name = option.DefaultPartName
			if len(args) == 1 {
				name = args[0]
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), *cfg, name)
		},
	}, cfg)
}

func runResolve(ctx context.Context, cfg ResolveConfig, name string) error {
	stepCfg, err := cfg.Parts.StepConfig(name, cfg.PartsDirectory)
	if err != nil {
		return err
	}

	resolver := updatecheck.NewVersionResolver(stepCfg.VersionResolutionParameters)

	if cfg.ReleaseOnly {
		release, err := resolver.ResolveRelease(ctx)
		if err != nil {
			return err
		}
		bus.Report(release)
		return nil
	}

	url, err := resolver.ResolveLatestURL(ctx)
	if err != nil {
		return err
	}

	if stepCfg.URL != "" {
		bus.Notify(fmt.Sprintf("part %q is pinned to %s", name, stepCfg.URL))
	}

	bus.Report(url)
	return nil
}
