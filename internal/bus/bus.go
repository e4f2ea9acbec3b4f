package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/appfy/gaesdk/event"
)

var publisher partybus.Publisher

// Set sets the singleton event bus publisher. This is optional; if no bus is provided, events are dropped.
func Set(p partybus.Publisher) {
	publisher = p
}

// Publish an event onto the bus. If there is no bus set by the calling application, this does nothing.
func Publish(e partybus.Event) {
	if publisher != nil {
		publisher.Publish(e)
	}
}

// Report sends final output intended for stdout.
func Report(report string) {
	Publish(partybus.Event{
		Type:  event.CLIReport,
		Value: report,
	})
}

// Notify sends auxiliary information intended for stderr.
func Notify(message string) {
	Publish(partybus.Event{
		Type:  event.CLINotification,
		Value: message,
	})
}
