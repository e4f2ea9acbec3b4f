package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/wagoodman/go-progress"

	internalhttp "github.com/appfy/gaesdk/internal/http"
	"github.com/appfy/gaesdk/internal/log"
)

// DownloadFile streams the given URL to filepath and returns the digests of the bytes written. When a
// monitor is provided it is sized from the response content length and advanced as bytes arrive.
func DownloadFile(ctx context.Context, url string, filepath string, monitor *progress.Manual) (map[string]string, error) {
	resp, err := DownloadURL(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := os.Create(filepath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	digester := NewDigester()
	writers := []io.Writer{out, digester}
	if monitor != nil {
		if resp.ContentLength > 0 {
			monitor.SetTotal(resp.ContentLength)
		}
		writers = append(writers, progressWriter{monitor: monitor})
	}

	n, err := io.Copy(io.MultiWriter(writers...), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to write %q: %w", filepath, err)
	}

	digests := digester.Digests()
	log.FromContext(ctx).WithFields("url", url, "bytes", n, "sha256", digests[SHA256Algorithm]).Trace("downloaded file")

	return digests, nil
}

// DownloadURL issues a GET for the given URL using the HTTP client on the context. Any status other
// than 200 is an error and the body is closed.
func DownloadURL(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request for %q: %w", url, err)
	}

	resp, err := internalhttp.ClientFromContext(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download %q: %w", url, err)
	}

	log.FromContext(ctx).WithFields("http-status", resp.StatusCode).Tracef("http get %q", url)

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d for %q", resp.StatusCode, url)
	}
	return resp, nil
}

type progressWriter struct {
	monitor *progress.Manual
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.monitor.Add(int64(len(p)))
	return len(p), nil
}
