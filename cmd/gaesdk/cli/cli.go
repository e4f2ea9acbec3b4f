package cli

import (
	"github.com/anchore/clio"
	"github.com/anchore/go-logger"

	"github.com/appfy/gaesdk/cmd/gaesdk/cli/command"
	"github.com/appfy/gaesdk/cmd/gaesdk/cli/internal/ui"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/internal/log"
)

// New constructs the gaesdk application: the root command plus install, resolve, list, check and
// version. Each command is handed its own config struct, which clio populates from the config file,
// environment and flags before RunE is called.
func New(id clio.Identification) clio.Application {
	clioCfg := clio.NewSetupConfig(id).
		WithGlobalConfigFlag().   // add persistent -c <path> for reading an application config from
		WithGlobalLoggingFlags(). // add persistent -v and -q flags tied to the logging config
		WithConfigInRootHelp().   // --help on the root command renders the full application config in the help text
		WithUIConstructor(
			// no interactive UI: reports and notifications are written at teardown
			func(cfg clio.Config) ([]clio.UI, error) {
				return []clio.UI{ui.None(cfg.Log.Quiet)}, nil
			},
		).
		WithLoggingConfig(clio.LoggingConfig{
			Level: logger.InfoLevel,
		}).
		WithInitializers(
			func(state *clio.State) error {
				// clio is setting up and providing the bus and logger to the application. Once loaded,
				// we can hoist them into the internal packages for global use.
				bus.Set(state.Bus)
				log.Set(state.Logger)

				return nil
			},
		)

	app := clio.New(*clioCfg)

	root := command.Root(app)

	root.AddCommand(
		clio.VersionCommand(id),
		command.Install(app),
		command.Resolve(app),
		command.List(app),
		command.Check(app),
	)

	return app
}
