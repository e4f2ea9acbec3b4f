package sdk

import (
	"context"
	"errors"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/log"
)

type StatusOptions struct {
	// VerifyDigests re-hashes every installed file against the recorded digest.
	VerifyDigests bool

	// CheckUpdates asks the update-check endpoint for the latest release.
	CheckUpdates bool
}

// Status describes a part's recorded installation relative to its current configuration.
type Status struct {
	Name             string `json:"name"`
	URL              string `json:"url"`
	Destination      string `json:"destination"`
	IsInstalled      bool   `json:"isInstalled"`
	IsIntact         bool   `json:"isIntact"`
	ConfigChanged    bool   `json:"configChanged"`
	InstalledRelease string `json:"installedRelease"`
	LatestRelease    string `json:"latestRelease,omitempty"`
	UpdateAvailable  bool   `json:"updateAvailable"`
	Files            int    `json:"files"`

	// VerifyError explains why an installed part is not intact.
	VerifyError error `json:"-"`

	// Error is set when the status itself could not be determined.
	Error error `json:"-"`
}

// OK is true when the part is installed, intact, matches its configuration and is not behind upstream.
func (s Status) OK() bool {
	return s.Error == nil && s.IsInstalled && s.IsIntact && !s.ConfigChanged && !s.UpdateAvailable
}

func CheckStatus(ctx context.Context, name string, step *Step, store *gaesdk.Store, opts StatusOptions) Status {
	status := Status{
		Name:        name,
		URL:         step.config.URL,
		Destination: step.config.Destination,
	}

	entry, err := store.Get(name)
	switch {
	case errors.Is(err, gaesdk.ErrNotInstalled):
		// pass
	case err != nil:
		status.Error = err
		return status
	default:
		status.IsInstalled = true
		status.URL = entry.URL
		status.Destination = entry.Destination
		status.InstalledRelease = entry.Release
		status.Files = len(entry.Files)

		if err := entry.Verify(opts.VerifyDigests); err != nil {
			log.FromContext(ctx).WithFields("part", name, "reason", err).Debug("installation is not intact")
			status.VerifyError = err
		} else {
			status.IsIntact = true
		}

		digest, err := step.config.Digest()
		if err != nil {
			status.Error = err
			return status
		}
		status.ConfigChanged = digest != entry.ConfigDigest
	}

	if !opts.CheckUpdates {
		return status
	}

	resolver, ok := step.resolver.(gaesdk.ReleaseResolver)
	if !ok {
		return status
	}

	latest, err := resolver.ResolveRelease(ctx)
	if err != nil {
		status.Error = err
		return status
	}

	status.LatestRelease = latest

	// a pinned url never moves, so upstream releases are informational only
	if status.IsInstalled && step.config.URL == "" {
		status.UpdateAvailable = internal.IsNewerRelease(status.InstalledRelease, latest)
	}

	return status
}
