package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"

	"github.com/appfy/gaesdk/event"
)

func TestNoUI_Teardown(t *testing.T) {
	events := []partybus.Event{
		{Type: event.CLINotification, Value: "1 part installed"},
		{Type: event.CLIReport, Value: "https://storage.googleapis.com/appengine-sdks/featured/google_appengine_1.9.11.zip\n"},
		{Type: event.SDKURLResolvedEvent, Value: "ignored"},
		{Type: event.CLIReport, Value: 42},
	}

	tests := []struct {
		name       string
		quiet      bool
		wantStdout string
		wantStderr string
	}{
		{
			name:       "reports to stdout, notifications to stderr",
			wantStdout: "https://storage.googleapis.com/appengine-sdks/featured/google_appengine_1.9.11.zip\n",
			wantStderr: "1 part installed\n",
		},
		{
			name:       "quiet drops notifications only",
			quiet:      true,
			wantStdout: "https://storage.googleapis.com/appengine-sdks/featured/google_appengine_1.9.11.zip\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			n := None(tt.quiet)
			n.out = &stdout
			n.errOut = &stderr

			require.NoError(t, n.Setup(nil))
			for _, e := range events {
				require.NoError(t, n.Handle(e))
			}
			require.NoError(t, n.Teardown(false))

			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}
