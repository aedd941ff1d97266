package conn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	log "github.com/sirupsen/logrus"
)

const readChunkSize = 1024

// ProcessHandle owns one spawned process. Stdout and stderr of the process share a single pipe, which is drained
// by a background goroutine into a buffer so that ReadAvailable never blocks.
type ProcessHandle struct {
	cmd *exec.Cmd

	mu      sync.Mutex
	buf     bytes.Buffer
	readErr error
	closed  bool

	drained chan struct{}
}

// Spawn starts argv[0] with the remaining elements as arguments. A missing or non executable binary is reported
// as *SpawnError.
func Spawn(argv []string) (*ProcessHandle, error) {
	if len(argv) == 0 {
		return nil, &SpawnError{Err: errors.New("empty command line")}
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = createSysProcAttr()

	r, w, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Path: argv[0], Err: fmt.Errorf("Spawn: failed creating output pipe: %w", err)}
	}
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, &SpawnError{Path: argv[0], Err: err}
	}
	// the child has its own copy of the write end, we need EOF once it exits
	_ = w.Close()

	h := &ProcessHandle{cmd: cmd, drained: make(chan struct{})}
	go h.drain(r)
	log.WithFields(log.Fields{"path": argv[0], "pid": cmd.Process.Pid}).Debug("spawned process")
	return h, nil
}

func (h *ProcessHandle) drain(r io.ReadCloser) {
	defer close(h.drained)
	defer r.Close()
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		h.mu.Lock()
		if n > 0 {
			h.buf.Write(chunk[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.readErr = err
			}
			h.closed = true
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
}

// ReadAvailable returns all output that arrived since the previous call, or nil if there is none. It never blocks.
// A read failure of the pipe is returned once together with the data read before it. io.EOF is returned once the
// pipe is closed and everything has been consumed.
func (h *ProcessHandle) ReadAvailable() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var data []byte
	if h.buf.Len() > 0 {
		data = make([]byte, h.buf.Len())
		copy(data, h.buf.Bytes())
		h.buf.Reset()
	}
	if h.readErr != nil {
		err := h.readErr
		h.readErr = nil
		return data, err
	}
	if h.closed && len(data) == 0 {
		return nil, io.EOF
	}
	return data, nil
}

// Drained is closed once the output pipe reached EOF and everything the process wrote is buffered.
func (h *ProcessHandle) Drained() <-chan struct{} {
	return h.drained
}

// Destroy forcefully terminates the process. Killing a process that already exited is not an error.
func (h *ProcessHandle) Destroy() error {
	err := killProcess(h.cmd.Process)
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("Destroy: failed killing pid %d: %w", h.cmd.Process.Pid, err)
	}
	return nil
}

// Wait blocks until the process exits and returns its exit code. Termination by a signal yields -1 together with
// the *exec.ExitError.
func (h *ProcessHandle) Wait() (int, error) {
	err := h.cmd.Wait()
	if h.cmd.ProcessState == nil {
		return -1, err
	}
	return h.cmd.ProcessState.ExitCode(), err
}

// Pid of the spawned process.
func (h *ProcessHandle) Pid() int {
	return h.cmd.Process.Pid
}
