package updatecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/wagoodman/go-partybus"
	"gopkg.in/yaml.v3"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/event"
	"github.com/appfy/gaesdk/internal/bus"
	internalhttp "github.com/appfy/gaesdk/internal/http"
	"github.com/appfy/gaesdk/internal/log"
)

const (
	DefaultEndpoint    = "https://appengine.google.com/api/updatecheck"
	DefaultURLTemplate = "https://storage.googleapis.com/appengine-sdks/featured/google_appengine_{{ .Version }}.zip"

	releaseField = "release"
)

var _ gaesdk.ReleaseResolver = (*VersionResolver)(nil)

type VersionResolutionParameters struct {
	Endpoint    string `json:"update-check-url" yaml:"update-check-url" mapstructure:"update-check-url"`
	URLTemplate string `json:"url-template" yaml:"url-template" mapstructure:"url-template"`
}

type VersionResolver struct {
	config             VersionResolutionParameters
	updateCheckFetcher func(ctx context.Context, url string) ([]byte, error)
}

type templateData struct {
	Version string
}

func NewVersionResolver(cfg VersionResolutionParameters) *VersionResolver {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	return &VersionResolver{
		config:             cfg,
		updateCheckFetcher: fetchUpdateCheck,
	}
}

func (v VersionResolver) Endpoint() string {
	return v.config.Endpoint
}

// ResolveLatestURL asks the update-check endpoint for the current release and returns the SDK download
// URL for it. Every call performs a fresh round trip.
func (v VersionResolver) ResolveLatestURL(ctx context.Context) (string, error) {
	release, err := v.ResolveRelease(ctx)
	if err != nil {
		return "", err
	}

	url, err := v.URLForRelease(release)
	if err != nil {
		return "", err
	}

	log.FromContext(ctx).WithFields("release", release, "url", url).Debug("resolved latest SDK url")

	bus.Publish(partybus.Event{
		Type:   event.SDKURLResolvedEvent,
		Source: v.config.Endpoint,
		Value:  url,
	})

	return url, nil
}

// ResolveRelease returns the raw release identifier advertised by the update-check endpoint.
func (v VersionResolver) ResolveRelease(ctx context.Context) (string, error) {
	log.FromContext(ctx).WithFields("endpoint", v.config.Endpoint).Trace("checking for the latest SDK release")

	body, err := v.updateCheckFetcher(ctx, v.config.Endpoint)
	if err != nil {
		return "", v.newError(ReasonUnreachable, err)
	}

	release, err := parseRelease(body)
	if err != nil {
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			resErr.Endpoint = v.config.Endpoint
			return "", resErr
		}
		return "", err
	}

	return release, nil
}

// URLForRelease renders the download URL template for the given release. The release is not
// interpreted or validated.
func (v VersionResolver) URLForRelease(release string) (string, error) {
	tmpl, err := template.New("url").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(v.config.URLTemplate)
	if err != nil {
		return "", v.newError(ReasonInvalidURLTemplate, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Version: release}); err != nil {
		return "", v.newError(ReasonInvalidURLTemplate, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (v VersionResolver) newError(reason string, err error) *ResolutionError {
	return &ResolutionError{
		Endpoint: v.config.Endpoint,
		Reason:   reason,
		Err:      err,
	}
}

// parseRelease reads the update-check document as loosely typed YAML and extracts the release field.
// All other fields are ignored.
func parseRelease(body []byte) (string, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return "", &ResolutionError{Reason: ReasonMalformedResponse, Err: err}
	}

	node, ok := doc[releaseField]
	if !ok {
		return "", &ResolutionError{Reason: ReasonNoUsableVersion}
	}

	if node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return "", &ResolutionError{
			Reason: ReasonNoUsableVersion,
			Err:    fmt.Errorf("%q is not a scalar value (line %d)", releaseField, node.Line),
		}
	}

	// the source text is used as-is so that "1.10" is not read back as the float 1.1
	release := strings.TrimSpace(node.Value)
	if release == "" {
		return "", &ResolutionError{Reason: ReasonNoUsableVersion}
	}

	return release, nil
}

func fetchUpdateCheck(ctx context.Context, url string) ([]byte, error) {
	log.FromContext(ctx).WithFields("url", url).Trace("requesting update check")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := internalhttp.ClientFromContext(ctx).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response from update check: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
