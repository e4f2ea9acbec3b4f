package option

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/appfy/gaesdk/sdk"
)

// DefaultPartName is the part configured when no config file is present.
const DefaultPartName = "gae_sdk"

// Parts maps a part name to its raw step options. Options stay untyped until a step is built so
// that string-typed values (e.g. from environment variables) are decoded weakly.
type Parts map[string]map[string]any

// Names returns the configured part names, sorted.
func (p Parts) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the requested part names, sorted. No names selects every part.
func (p Parts) Select(names []string) ([]string, error) {
	if len(names) == 0 {
		return p.Names(), nil
	}

	requested := strset.New(names...)

	var selected []string
	for _, name := range p.Names() {
		if requested.Has(name) {
			selected = append(selected, name)
			requested.Remove(name)
		}
	}

	if !requested.IsEmpty() {
		missing := requested.List()
		sort.Strings(missing)
		return nil, fmt.Errorf("parts not configured: %s", strings.Join(missing, ", "))
	}

	return selected, nil
}

// StepConfig decodes the options of a single part. A part without a destination installs into
// <parts-directory>/<name>.
func (p Parts) StepConfig(name, partsDirectory string) (sdk.StepConfig, error) {
	opts, ok := p[name]
	if !ok {
		return sdk.StepConfig{}, fmt.Errorf("part %q is not configured", name)
	}

	cfg, err := sdk.NewStepConfig(opts, filepath.Join(partsDirectory, name))
	if err != nil {
		return sdk.StepConfig{}, fmt.Errorf("failed to read part %q config: %w", name, err)
	}
	return cfg, nil
}
