package updatecheck

import "fmt"

const (
	ReasonUnreachable        = "endpoint unreachable"
	ReasonMalformedResponse  = "malformed response"
	ReasonNoUsableVersion    = "no usable version found"
	ReasonInvalidURLTemplate = "invalid url template"
)

// ResolutionError is returned when the latest SDK download URL cannot be determined.
type ResolutionError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not find a usable SDK version from %s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not find a usable SDK version from %s: %s", e.Endpoint, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
