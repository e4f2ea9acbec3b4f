package internal

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/appfy/gaesdk/internal/log"
)

// IsNewerRelease reports whether the candidate release should replace the installed one. Releases
// that are not semver-ish are compared as opaque strings: any difference counts as newer.
func IsNewerRelease(installed, candidate string) bool {
	installed = strings.TrimSpace(installed)
	candidate = strings.TrimSpace(candidate)

	if candidate == "" {
		return false
	}
	if installed == "" {
		return true
	}

	installedVer, err := semver.NewVersion(installed)
	if err != nil {
		log.Tracef("failed to parse installed release %q: %v", installed, err)
		return installed != candidate
	}

	candidateVer, err := semver.NewVersion(candidate)
	if err != nil {
		log.Tracef("failed to parse candidate release %q: %v", candidate, err)
		return installed != candidate
	}

	return candidateVer.GreaterThan(installedVer)
}
