package conn

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// RoutingActivator reconfigures host routing once the tunnel is up. Activate blocks until the routing change
// is done; there is no way to cancel it.
type RoutingActivator interface {
	Activate(param string) error
}

// ScriptRouting runs a routing shell script with elevated privileges and the routing parameter as only argument.
type ScriptRouting struct {
	// Script is the path of the routing script.
	Script string
	// Shell interprets Script, "sh" by default.
	Shell string
	// Elevate is the command prefix used to gain privileges, the shell command line is appended as one argument.
	// It is skipped when the process already runs as root.
	Elevate []string

	run func(argv []string) ([]byte, error)
}

// NewScriptRouting creates a ScriptRouting for the script at path that elevates with "su -c".
func NewScriptRouting(path string) *ScriptRouting {
	return &ScriptRouting{
		Script:  path,
		Shell:   "sh",
		Elevate: []string{"su", "-c"},
		run:     combinedOutput,
	}
}

func combinedOutput(argv []string) ([]byte, error) {
	return exec.Command(argv[0], argv[1:]...).CombinedOutput()
}

// Command returns the command line that Activate runs for param.
func (r *ScriptRouting) Command(param string) []string {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	if len(r.Elevate) == 0 || isPrivileged() {
		return []string{shell, r.Script, param}
	}
	return append(slices.Clone(r.Elevate), fmt.Sprintf("%s %s %s", shell, shellQuote(r.Script), param))
}

// shellQuote wraps s in single quotes for the command line handed to the elevation prefix.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Activate runs the routing script and waits for it to finish. param is validated again here because it ends up
// in a shell command line.
func (r *ScriptRouting) Activate(param string) error {
	if !ValidEndpoint(param) {
		return &RoutingError{Param: param, ExitCode: -1, Err: ErrTampering}
	}
	argv := r.Command(param)
	log.WithField("cmd", strings.Join(argv, " ")).Debug("routing invocation command")

	run := r.run
	if run == nil {
		run = combinedOutput
	}
	out, err := run(argv)
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &RoutingError{Param: param, ExitCode: exitErr.ExitCode(), Output: string(out), Err: err}
	}
	return &RoutingError{Param: param, ExitCode: -1, Output: string(out), Err: &SpawnError{Path: argv[0], Err: err}}
}
