package command

import (
	"github.com/anchore/clio"
	"github.com/spf13/cobra"

	internalhttp "github.com/appfy/gaesdk/internal/http"
)

func Root(app clio.Application) *cobra.Command {
	cmd := app.SetupRootCommand(&cobra.Command{})

	// wrap any existing PersistentPreRunE to inject dependencies into context
	existingPreRunE := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// the logger is not placed on the context here: clio installs the configured logger after this
		// hook runs, so log.FromContext falls back to the global logger instead

		// inject a single-attempt HTTP client into the context
		httpClient := internalhttp.NewClient()
		httpClient.Logger = internalhttp.NewLeveledLogger()
		ctx = internalhttp.WithHTTPClient(ctx, httpClient)

		cmd.SetContext(ctx)

		if existingPreRunE != nil {
			return existingPreRunE(cmd, args)
		}
		return nil
	}

	return cmd
}
