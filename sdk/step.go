package sdk

import (
	"context"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/log"
	"github.com/appfy/gaesdk/sdk/archive"
	"github.com/appfy/gaesdk/sdk/updatecheck"
)

// Step installs the App Engine SDK into a destination directory, resolving the latest release when no
// explicit URL is configured.
type Step struct {
	config    StepConfig
	resolver  gaesdk.VersionResolver
	installer gaesdk.ArchiveInstaller
}

func NewStep(cfg StepConfig) *Step {
	return NewStepWith(cfg,
		updatecheck.NewVersionResolver(cfg.VersionResolutionParameters),
		archive.NewInstaller(cfg.InstallerParameters),
	)
}

// NewStepWith builds a step around the given resolver and fetch/extract collaborator.
func NewStepWith(cfg StepConfig, resolver gaesdk.VersionResolver, installer gaesdk.ArchiveInstaller) *Step {
	return &Step{
		config:    cfg,
		resolver:  resolver,
		installer: installer,
	}
}

func (s Step) Config() StepConfig {
	return s.config
}

// Install fetches and extracts the SDK. Errors from the resolver and the collaborator are returned
// unchanged and nothing is cleaned up on failure.
func (s Step) Install(ctx context.Context) (*gaesdk.Installation, error) {
	url := s.config.URL
	if url == "" {
		internal.MonitorFromContext(ctx).SetStage(internal.StageResolving)

		resolved, err := s.resolver.ResolveLatestURL(ctx)
		if err != nil {
			return nil, err
		}
		url = resolved
	}

	log.FromContext(ctx).Infof("Using SDK version found at %s", url)

	return s.installer.FetchAndExtract(ctx, url, s.config.Destination, s.config.ClearDestination)
}
