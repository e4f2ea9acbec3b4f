package command

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appfy/gaesdk/cmd/gaesdk/cli/option"
)

// sdkServer stands in for both the update-check endpoint and the SDK download bucket.
type sdkServer struct {
	*httptest.Server
	release      string
	updateChecks atomic.Int32
	downloads    atomic.Int32
}

func newSDKServer(t *testing.T, release string) *sdkServer {
	t.Helper()

	s := &sdkServer{release: release}
	archive := zipBytes(t, map[string]string{
		"google_appengine/VERSION":          fmt.Sprintf("release: %q\n", release),
		"google_appengine/dev_appserver.py": "#!/usr/bin/env python\n",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/updatecheck", func(w http.ResponseWriter, _ *http.Request) {
		s.updateChecks.Add(1)
		fmt.Fprintf(w, "release: %q\ntimestamp: 1404950400\napi_versions: ['1']\n", s.release)
	})
	mux.HandleFunc("/appengine-sdks/featured/google_appengine_"+release+".zip", func(w http.ResponseWriter, _ *http.Request) {
		s.downloads.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// partOptions points a part at the test server instead of the real endpoints.
func (s *sdkServer) partOptions() map[string]any {
	return map[string]any{
		"update-check-url": s.URL + "/api/updatecheck",
		"url-template":     s.URL + "/appengine-sdks/featured/google_appengine_{{ .Version }}.zip",
	}
}

func (s *sdkServer) appConfig(partsDir string) option.AppConfig {
	return option.AppConfig{
		PartsDirectory: partsDir,
		Parts: option.Parts{
			option.DefaultPartName: s.partOptions(),
		},
	}
}

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}
