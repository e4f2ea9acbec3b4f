package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anchore/clio"
	"github.com/wagoodman/go-partybus"

	"github.com/appfy/gaesdk/event"
	"github.com/appfy/gaesdk/internal/log"
)

var _ clio.UI = (*NoUI)(nil)

// NoUI renders nothing while running. Reports and notifications are held until teardown, then
// written to stdout and stderr respectively.
type NoUI struct {
	finalizeEvents []partybus.Event
	subscription   partybus.Unsubscribable
	quiet          bool
	out            io.Writer
	errOut         io.Writer
}

func None(quiet bool) *NoUI {
	return &NoUI{
		quiet:  quiet,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func (n *NoUI) Setup(subscription partybus.Unsubscribable) error {
	n.subscription = subscription
	return nil
}

func (n *NoUI) Handle(e partybus.Event) error {
	switch e.Type {
	case event.CLIReport, event.CLINotification:
		n.finalizeEvents = append(n.finalizeEvents, e)
	case event.SDKInstallStartedEvent:
		p, _, err := event.ParseSDKInstallStarted(e)
		if err != nil {
			log.Warnf("unable to parse event: %+v", err)
			return nil
		}
		log.WithFields("part", p.Name()).Debug("installing part")
	case event.SDKURLResolvedEvent:
		endpoint, url, err := event.ParseSDKURLResolved(e)
		if err != nil {
			log.Warnf("unable to parse event: %+v", err)
			return nil
		}
		log.WithFields("endpoint", endpoint, "url", url).Trace("latest SDK url resolved")
	}
	return nil
}

func (n NoUI) Teardown(_ bool) error {
	return n.writeEvents(n.finalizeEvents...)
}

func (n NoUI) writeEvents(events ...partybus.Event) error {
	for _, e := range events {
		switch e.Type {
		case event.CLIReport:
			_, report, err := event.ParseCLIReport(e)
			if err != nil {
				log.WithFields("error", err).Warn("failed to gather final report")
				continue
			}

			// reports are the product of the command, so quiet does not apply
			if _, err := fmt.Fprintln(n.out, strings.TrimRight(report, "\n")); err != nil {
				return fmt.Errorf("failed to write final report to stdout: %w", err)
			}

		case event.CLINotification:
			if n.quiet {
				continue
			}

			_, notification, err := event.ParseCLINotification(e)
			if err != nil {
				log.WithFields("error", err).Warn("failed to gather notification")
				continue
			}

			if _, err := fmt.Fprintln(n.errOut, notification); err != nil {
				return fmt.Errorf("failed to write notification to stderr: %w", err)
			}
		}
	}
	return nil
}
