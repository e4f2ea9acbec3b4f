package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/anchore/clio"
	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/gojq"
	"github.com/jedib0t/go-pretty/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/cmd/gaesdk/cli/option"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/sdk"
)

const (
	tableOutputFormat = "table"
	jsonOutputFormat  = "json"
)

type ListConfig struct {
	Config           string `json:"config" yaml:"config" mapstructure:"config"`
	option.Format    `json:"" yaml:",inline" mapstructure:",squash"`
	option.Check     `json:"" yaml:",inline" mapstructure:",squash"`
	option.AppConfig `json:"" yaml:",inline" mapstructure:",squash"`
}

func List(app clio.Application) *cobra.Command {
	cfg := &ListConfig{
		Format: option.Format{
			Output:           tableOutputFormat,
			AllowableFormats: []string{tableOutputFormat, jsonOutputFormat},
		},
		AppConfig: option.DefaultAppConfig(),
	}

	return app.SetupCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured parts and recorded SDK installations",
		Aliases: []string{
			"ls",
		},
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JQCommand != "" && cfg.Output != jsonOutputFormat {
				return fmt.Errorf("--jq requires json output")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), *cfg)
		},
	}, cfg)
}

type partStatus struct {
	sdk.Status
	Configured   bool   `json:"configured"`
	ErrorMessage string `json:"error,omitempty"`
}

func runList(ctx context.Context, cfg ListConfig) error {
	store, err := gaesdk.NewStore(cfg.PartsDirectory)
	if err != nil {
		return err
	}

	statuses := collectStatuses(ctx, cfg, store)

	var report string
	switch strings.ToLower(cfg.Output) {
	case tableOutputFormat:
		report = renderListTable(statuses)
	case jsonOutputFormat:
		report, err = renderListJSON(statuses, cfg.JQCommand)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format: %q", cfg.Output)
	}

	bus.Report(report)
	return nil
}

func collectStatuses(ctx context.Context, cfg ListConfig, store *gaesdk.Store) []partStatus {
	opts := sdk.StatusOptions{
		VerifyDigests: cfg.VerifyDigest,
		CheckUpdates:  cfg.Updates,
	}

	var statuses []partStatus
	for _, name := range cfg.Parts.Names() {
		stepCfg, err := cfg.Parts.StepConfig(name, cfg.PartsDirectory)
		if err != nil {
			statuses = append(statuses, newPartStatus(sdk.Status{Name: name, Error: err}, true))
			continue
		}

		statuses = append(statuses, newPartStatus(sdk.CheckStatus(ctx, name, sdk.NewStep(stepCfg), store, opts), true))
	}

	// what remains is parts in the store that are no longer configured
	for _, entry := range store.Entries() {
		if _, ok := cfg.Parts[entry.Name]; ok {
			continue
		}
		statuses = append(statuses, newPartStatus(entryStatus(entry, opts.VerifyDigests), false))
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	return statuses
}

func newPartStatus(s sdk.Status, configured bool) partStatus {
	ps := partStatus{
		Status:     s,
		Configured: configured,
	}
	if s.Error != nil {
		ps.ErrorMessage = s.Error.Error()
	}
	return ps
}

func entryStatus(entry gaesdk.StoreEntry, verifyDigests bool) sdk.Status {
	status := sdk.Status{
		Name:             entry.Name,
		URL:              entry.URL,
		Destination:      entry.Destination,
		IsInstalled:      true,
		InstalledRelease: entry.Release,
		Files:            len(entry.Files),
	}

	err := entry.Verify(verifyDigests)
	if err != nil {
		var (
			errMismatch *gaesdk.ErrDigestMismatch
			errMissing  *gaesdk.ErrMissingFile
		)
		if !errors.As(err, &errMismatch) && !errors.As(err, &errMissing) {
			status.Error = err
			return status
		}
		status.VerifyError = err
	}
	status.IsIntact = err == nil

	return status
}

func renderListTable(items []partStatus) string {
	if len(items) == 0 {
		return "no parts configured or installed"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false

	t.AppendHeader(table.Row{"Name", "Release", "Destination", ""})

	for _, item := range items {
		t.AppendRow(getPartStatusRow(item))
	}

	return t.Render()
}

func getPartStatusRow(item partStatus) table.Row {
	var (
		commentary string
		severity   int
	)

	switch {
	case item.ErrorMessage != "":
		commentary = item.ErrorMessage
		severity = 2
	case !item.IsInstalled:
		commentary = "not installed"
		severity = 1
	case !item.Configured:
		commentary = "part is not configured"
		severity = 2
	case !item.IsIntact:
		commentary = "installation is not intact"
		severity = 2
	case item.ConfigChanged:
		commentary = "configuration changed since install"
		severity = 1
	case item.UpdateAvailable:
		commentary = fmt.Sprintf("release %s is available", item.LatestRelease)
		severity = 1
	}

	release := item.InstalledRelease
	if release == "" && item.IsInstalled {
		release = "?"
	}

	style := partStatusStyle(severity)

	return table.Row{
		item.Name,
		style.Render(release),
		item.Destination,
		style.Render(commentary),
	}
}

func renderListJSON(items []partStatus, jqCommand string) (string, error) {
	if items == nil {
		items = []partStatus{}
	}

	doc := map[string]any{
		"parts": items,
	}

	by, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("unable to encode list: %w", err)
	}

	if jqCommand == "" {
		var out strings.Builder
		enc := json.NewEncoder(&out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return "", fmt.Errorf("unable to encode list: %w", err)
		}
		return out.String(), nil
	}

	return applyJQ(by, jqCommand)
}

func applyJQ(doc []byte, jqCommand string) (string, error) {
	query, err := gojq.Parse(jqCommand)
	if err != nil {
		return "", fmt.Errorf("invalid jq expression: %w", err)
	}

	// gojq only accepts plain map/slice values, not typed structs
	var input any
	if err := json.Unmarshal(doc, &input); err != nil {
		return "", fmt.Errorf("unable to decode list: %w", err)
	}

	var results []string
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return "", fmt.Errorf("jq evaluation failed: %w", err)
		}

		switch vv := v.(type) {
		case string:
			results = append(results, vv)
		default:
			by, err := json.MarshalIndent(vv, "", "  ")
			if err != nil {
				return "", fmt.Errorf("unable to encode jq result: %w", err)
			}
			results = append(results, string(by))
		}
	}

	return strings.Join(results, "\n"), nil
}

var (
	goodStatus      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // 10 = high intensity green (ANSI 16 bit color code)
	badStatus       = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // 214 = orange1 (ANSI 16 bit color code)
	reallyBadStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // 9 = high intensity red (ANSI 16 bit color code)
)

func partStatusStyle(severity int) lipgloss.Style {
	switch severity {
	case 0:
		return goodStatus
	case 1:
		return badStatus
	}

	return reallyBadStatus
}
