package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/anchore/clio"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/cmd/gaesdk/cli/option"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/internal/log"
	"github.com/appfy/gaesdk/sdk"
)

var (
	errConfigChanged   = errors.New("configuration changed since the last install")
	errUpdateAvailable = errors.New("a newer SDK release is available")
)

type CheckConfig struct {
	Config           string `json:"config" yaml:"config" mapstructure:"config"`
	option.Check     `json:"" yaml:",inline" mapstructure:",squash"`
	option.AppConfig `json:"" yaml:",inline" mapstructure:",squash"`
}

func Check(app clio.Application) *cobra.Command {
	cfg := &CheckConfig{
		AppConfig: option.DefaultAppConfig(),
	}

	var names []string

	return app.SetupCommand(&cobra.Command{
		Use:   "check [PART...]",
		Short: "Verify the SDK is installed and intact for each part",
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			names = args
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), *cfg, names)
		},
	}, cfg)
}

func runCheck(ctx context.Context, cfg CheckConfig, names []string) error {
	names, err := cfg.Parts.Select(names)
	if err != nil {
		return err
	}

	// get the current store state
	store, err := gaesdk.NewStore(cfg.PartsDirectory)
	if err != nil {
		return err
	}

	opts := sdk.StatusOptions{
		VerifyDigests: cfg.VerifyDigest,
		CheckUpdates:  cfg.Updates,
	}

	var errs error
	for _, name := range names {
		stepCfg, err := cfg.Parts.StepConfig(name, cfg.PartsDirectory)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		status := sdk.CheckStatus(ctx, name, sdk.NewStep(stepCfg), store, opts)
		if err := statusError(status); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("part %q: %w", name, err))
			continue
		}

		log.WithFields("part", name, "release", status.InstalledRelease).Info("installation verified")
	}

	if errs == nil {
		bus.Notify(fmt.Sprintf("%d part(s) verified", len(names)))
	}

	return errs
}

// statusError reduces a status to the first reason the part fails verification.
func statusError(status sdk.Status) error {
	switch {
	case status.Error != nil:
		return status.Error
	case !status.IsInstalled:
		return gaesdk.ErrNotInstalled
	case !status.IsIntact:
		if status.VerifyError != nil {
			return status.VerifyError
		}
		return errors.New("installation is not intact")
	case status.ConfigChanged:
		return errConfigChanged
	case status.UpdateAvailable:
		return fmt.Errorf("%w: %s (installed %s)", errUpdateAvailable, status.LatestRelease, status.InstalledRelease)
	}
	return nil
}
