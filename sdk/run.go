package sdk

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/wagoodman/go-partybus"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/event"
	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/bus"
	"github.com/appfy/gaesdk/internal/log"
)

var releasePattern = regexp.MustCompile(`^google_appengine_(.+)\.zip$`)

var _ event.Part = (*part)(nil)

type part struct {
	name string
	url  string
}

func (p part) Name() string { return p.name }
func (p part) URL() string  { return p.url }

// Run installs a named part and records the result in the store. The installation error, if any, is
// returned unchanged.
func Run(ctx context.Context, name string, step *Step, store *gaesdk.Store) (*gaesdk.Installation, error) {
	ctx, lgr := log.WithPart(ctx, name)

	monitor := internal.NewMonitor()
	ctx = internal.WithMonitor(ctx, monitor)

	bus.Publish(partybus.Event{
		Type:   event.SDKInstallStartedEvent,
		Source: part{name: name, url: step.config.URL},
		Value:  monitor,
	})

	inst, err := step.Install(ctx)
	if err != nil {
		monitor.SetError(err)
		return nil, err
	}

	digest, err := step.config.Digest()
	if err != nil {
		monitor.SetError(err)
		return nil, err
	}

	if err := store.Record(name, ReleaseFromURL(inst.URL), digest, inst); err != nil {
		monitor.SetError(err)
		return nil, fmt.Errorf("failed to record installation of part %q: %w", name, err)
	}

	monitor.SetStage(internal.StageInstalled)
	monitor.SetCompleted()

	lgr.WithFields("destination", inst.Destination, "files", len(inst.Files)).Debug("installed")

	return inst, nil
}

// ReleaseFromURL extracts the release from a canonical SDK archive name, or returns "" when the URL
// does not follow the google_appengine_<release>.zip convention.
func ReleaseFromURL(u string) string {
	match := releasePattern.FindStringSubmatch(path.Base(u))
	if len(match) != 2 {
		return ""
	}
	return match[1]
}
