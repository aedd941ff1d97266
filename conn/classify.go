package conn

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	setupCompleteMarker = "setup complete, "
	directTrafficMarker = "raw traffic directly to "

	// IndirectRouting is passed to the routing script when no usable direct endpoint was reported.
	IndirectRouting = "indirect"
)

// Phase of the tunnel negotiation as seen in the output of the tunnel binary.
type Phase int

const (
	Negotiating Phase = iota
	Established
)

func (p Phase) String() string {
	if p == Established {
		return "established"
	}
	return "negotiating"
}

// Classification is the result of looking at the cumulative log.
type Classification struct {
	Phase Phase
	// Direct is set when the tunnel reported that raw traffic goes straight to the server.
	Direct bool
	// Endpoint is the unvalidated text following the direct traffic marker up to the newline, taken verbatim.
	Endpoint string
}

// Classifier turns the cumulative tunnel output into a negotiation phase. Implementations must be pure: the same
// log always yields the same classification.
type Classifier interface {
	Classify(fullLog string) Classification
}

// MarkerClassifier recognizes the progress messages printed by iodine.
type MarkerClassifier struct{}

// Classify searches the whole log, so markers that were split over several reads are still found.
// If the direct traffic marker shows up more than once, the last occurrence wins.
func (MarkerClassifier) Classify(fullLog string) Classification {
	var c Classification
	if strings.Contains(fullLog, setupCompleteMarker) {
		c.Phase = Established
	}
	i := strings.LastIndex(fullLog, directTrafficMarker)
	if i == -1 {
		return c
	}
	rest := fullLog[i+len(directTrafficMarker):]
	if end := strings.IndexByte(rest, '\n'); end != -1 {
		rest = rest[:end]
	}
	c.Direct = true
	c.Endpoint = rest
	return c
}

var endpointPattern = regexp.MustCompile(`^[A-Za-z0-9._]+$`)

// ValidEndpoint reports whether token may be put on the routing script command line.
func ValidEndpoint(token string) bool {
	return endpointPattern.MatchString(token)
}

// RoutingParam returns the parameter for the routing script: the direct endpoint if there is a valid one,
// IndirectRouting otherwise. An endpoint that fails validation yields IndirectRouting and an error wrapping
// ErrTampering.
func (c Classification) RoutingParam() (string, error) {
	if !c.Direct {
		return IndirectRouting, nil
	}
	if !ValidEndpoint(c.Endpoint) {
		return IndirectRouting, fmt.Errorf("RoutingParam: rejected endpoint %q: %w", c.Endpoint, ErrTampering)
	}
	return c.Endpoint, nil
}
