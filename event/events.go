package event

import (
	"github.com/wagoodman/go-partybus"
)

const (
	typePrefix    = "gaesdk"
	cliTypePrefix = typePrefix + "-cli"

	// Events from the gaesdk library

	// SDKInstallStartedEvent is a partybus event that occurs when a single part installation has begun
	SDKInstallStartedEvent partybus.EventType = typePrefix + "-sdk-install-started"

	// SDKURLResolvedEvent is a partybus event that occurs when the latest SDK download URL has been resolved
	SDKURLResolvedEvent partybus.EventType = typePrefix + "-sdk-url-resolved"

	// Events exclusively for the CLI

	// CLIReport is a partybus event that occurs when a result is ready for final presentation to stdout
	CLIReport partybus.EventType = cliTypePrefix + "-report"

	// CLINotification is a partybus event that occurs when auxiliary information is ready for presentation to stderr
	CLINotification partybus.EventType = cliTypePrefix + "-notification"
)
