package conn

import (
	"errors"
	"fmt"
)

var (
	// ErrTampering is returned when the endpoint extracted from the tunnel output is not a plain address token.
	ErrTampering = errors.New("endpoint token contains characters outside of [A-Za-z0-9._]")
	// ErrAlreadyRunning is returned by Start when the previous attempt is still alive.
	ErrAlreadyRunning = errors.New("connector is already running")
	// ErrNotRunning is returned by Stop when Start was never called.
	ErrNotRunning = errors.New("connector was not started")
	// ErrStartTimeout is returned by Start when the tunnel process was not handed over in time.
	ErrStartTimeout = errors.New("timed out waiting for the tunnel process to start")
)

// SpawnError describes a tunnel or routing process that could not be started at all,
// for example because the binary is missing or not executable.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// RoutingError is returned when the routing script could not be run or exited with a non-zero code.
// ExitCode is -1 if the script never ran or was killed by a signal. Err wraps *SpawnError if the elevation
// command or shell could not be started, and is ErrTampering if the param was refused.
type RoutingError struct {
	Param    string
	ExitCode int
	Output   string
	Err      error
}

func (e *RoutingError) Error() string {
	if errors.Is(e.Err, ErrTampering) {
		return fmt.Sprintf("routing script not run, param '%s' rejected: %v", e.Param, e.Err)
	}
	if e.Spawned() {
		return fmt.Sprintf("routing script with param '%s' exited with code %d: %v", e.Param, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("routing script with param '%s' failed: %v", e.Param, e.Err)
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}

// Spawned reports whether the routing script was started before it failed.
func (e *RoutingError) Spawned() bool {
	var spawnErr *SpawnError
	return !errors.As(e.Err, &spawnErr) && !errors.Is(e.Err, ErrTampering)
}
