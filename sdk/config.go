package sdk

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/appfy/gaesdk/internal/log"
	"github.com/appfy/gaesdk/sdk/archive"
	"github.com/appfy/gaesdk/sdk/updatecheck"
)

// StepConfig is the immutable configuration of a single SDK install step.
type StepConfig struct {
	// URL is an explicit SDK archive URL. When empty the latest release is resolved on every install.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Destination is the extraction target, kept as configured. Defaults to the parts directory.
	Destination string `json:"destination" yaml:"destination" mapstructure:"destination"`

	// ClearDestination removes the destination before extracting. Defaults to true.
	ClearDestination bool `json:"clear-destination" yaml:"clear-destination" mapstructure:"clear-destination"`

	archive.InstallerParameters             `json:"" yaml:",inline" mapstructure:",squash"`
	updatecheck.VersionResolutionParameters `json:"" yaml:",inline" mapstructure:",squash"`
}

// NewStepConfig decodes a step's option block. Values are decoded weakly so that options written as
// strings (e.g. "false") are accepted. Unrecognized options are ignored.
func NewStepConfig(options map[string]any, partsDirectory string) (StepConfig, error) {
	cfg := StepConfig{
		ClearDestination: true,
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &cfg,
	})
	if err != nil {
		return StepConfig{}, fmt.Errorf("unable to create options decoder: %w", err)
	}

	if err := decoder.Decode(options); err != nil {
		return StepConfig{}, fmt.Errorf("invalid step options: %w", err)
	}

	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		log.WithFields("options", md.Unused).Debug("ignoring unrecognized step options")
	}

	if cfg.Destination == "" {
		cfg.Destination = partsDirectory
	}

	if cfg.Destination == "" {
		return StepConfig{}, fmt.Errorf("no destination configured and no parts directory available")
	}

	return cfg, nil
}

// Digest is a stable fingerprint of the configuration, used to detect option changes between runs.
// A relative destination is hashed as written, so the digest does not depend on the working directory.
func (c StepConfig) Digest() (string, error) {
	f, err := hashstructure.Hash(c, hashstructure.FormatV2, &hashstructure.HashOptions{
		ZeroNil: true,
	})
	if err != nil {
		return "", fmt.Errorf("could not hash step config: %w", err)
	}

	return fmt.Sprintf("%016x", f), nil
}
