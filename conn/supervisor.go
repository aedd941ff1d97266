package conn

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// outputDrainTimeout bounds the wait for the output pipe after the process exited. A forked child that inherited
// the pipe can keep it open.
const outputDrainTimeout = 2 * time.Second

// supervisor owns the spawn -> run -> exit lifecycle of the tunnel process for one attempt. Once the process
// exited and its output pipe is drained it clears the running flag.
type supervisor struct {
	argv  []string
	spawn func(argv []string) (*ProcessHandle, error)
	life  *lifecycle
	gate  *readinessGate
	entry *log.Entry

	// handle and spawnErr are written once before the gate opens and only read after it opened
	handle   *ProcessHandle
	spawnErr error

	done chan struct{}
}

func newSupervisor(argv []string, life *lifecycle, entry *log.Entry) *supervisor {
	return &supervisor{
		argv:  argv,
		spawn: Spawn,
		life:  life,
		gate:  newReadinessGate(),
		entry: entry,
		done:  make(chan struct{}),
	}
}

// start spawns the process on a new goroutine. Wait on s.gate before touching s.handle.
func (s *supervisor) start() {
	go s.run()
}

func (s *supervisor) run() {
	defer close(s.done)
	defer s.entry.Debug("supervisor stopped")

	h, err := s.spawn(s.argv)
	if err != nil {
		s.spawnErr = err
		s.entry.WithError(err).Error("failed to start tunnel binary")
		spawnFailures.Inc()
		s.life.sendLog("Failed to start iodine\n")
		// the caller of Start must never be left waiting
		s.gate.signal()
		s.life.transition(Disconnected)
		return
	}
	s.handle = h
	s.life.setRunning(true)
	s.gate.signal()
	s.entry.WithField("pid", h.Pid()).Info("tunnel process started")

	code, err := h.Wait()
	select {
	case <-h.Drained():
	case <-time.After(outputDrainTimeout):
		s.entry.Warn("tunnel output still open after exit")
	}
	s.life.setRunning(false)
	s.entry.WithFields(log.Fields{"pid": h.Pid(), "exitCode": code}).WithError(err).Info("tunnel process exited")
	// the poller moves to Disconnected after it consumed the remaining output
}

// stop kills the process and returns only after the supervisor goroutine observed the exit.
func (s *supervisor) stop() {
	s.gate.wait()
	if s.handle != nil {
		if err := s.handle.Destroy(); err != nil {
			s.entry.WithError(err).Warn("failed to destroy tunnel process")
		}
	}
	<-s.done
}
