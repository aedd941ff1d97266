package conn

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
)

const lowestSupportedVersionString = "0.6.0"

var lowestSupportedVersion = semver.MustParse(lowestSupportedVersionString)

var versionPattern = regexp.MustCompile(`(?i)version:?\s*v?([0-9]+\.[0-9]+(\.[0-9]+)?)`)

// CheckTunnelVersion runs '<binary> -v' to make sure the tunnel client is at least 0.6.0. Older clients print
// different progress messages, which the classifier would not recognize.
func CheckTunnelVersion(binary string) (*semver.Version, error) {
	b, err := exec.Command(binary, "-v").CombinedOutput()
	if err != nil && len(b) == 0 {
		return &semver.Version{}, &SpawnError{Path: binary, Err: err}
	}
	return parseTunnelVersion(string(b))
}

func parseTunnelVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return &semver.Version{}, fmt.Errorf("CheckTunnelVersion: no version found in '%s'", strings.TrimSpace(output))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return &semver.Version{}, fmt.Errorf("CheckTunnelVersion: could not parse version: %s from '%s'", err.Error(), output)
	}
	if v.LessThan(lowestSupportedVersion) {
		return v, fmt.Errorf("tunnel version %s is not supported. Please use at least %s", v, lowestSupportedVersion)
	}
	return v, nil
}
