package conn

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// State of a connection attempt. Within one attempt the state only moves forward:
// Idle -> Connecting -> Connected -> Disconnected or Idle -> Connecting -> Disconnected.
type State int

const (
	Idle State = iota
	Connecting
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// lifecycle is the state shared between the supervisor goroutine, the poller and callers of one attempt:
// the connection state, the running flag, the cumulative log and the routing parameter.
type lifecycle struct {
	mu           sync.Mutex
	state        State
	running      bool
	fullLog      strings.Builder
	routingParam string

	sink  LogSink
	entry *log.Entry
}

func newLifecycle(sink LogSink, entry *log.Entry) *lifecycle {
	return &lifecycle{
		state:        Idle,
		routingParam: IndirectRouting,
		sink:         sink,
		entry:        entry,
	}
}

// transition moves to the given state if that is a step forward. Connected can only be reached from Connecting.
// It returns false if the transition was not allowed.
func (l *lifecycle) transition(to State) bool {
	l.mu.Lock()
	from := l.state
	allowed := to > from && (to != Connected || from == Connecting)
	if allowed {
		l.state = to
	}
	l.mu.Unlock()

	if allowed {
		connectionState.Set(float64(to))
		l.entry.WithFields(log.Fields{"from": from.String(), "to": to.String()}).Info("connection state changed")
	}
	return allowed
}

func (l *lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *lifecycle) IsConnected() bool {
	return l.State() == Connected
}

func (l *lifecycle) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *lifecycle) setRunning(running bool) {
	l.mu.Lock()
	l.running = running
	l.mu.Unlock()
}

// sendLog appends text to the cumulative log and forwards it to the sink.
func (l *lifecycle) sendLog(text string) {
	l.mu.Lock()
	l.fullLog.WriteString(text)
	l.mu.Unlock()
	l.sink.ReportLog(text)
}

// FullLog returns everything that was logged during this attempt, in arrival order.
func (l *lifecycle) FullLog() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fullLog.String()
}

func (l *lifecycle) logLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fullLog.Len()
}

func (l *lifecycle) RoutingParam() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.routingParam
}

func (l *lifecycle) setRoutingParam(param string) {
	l.mu.Lock()
	l.routingParam = param
	l.mu.Unlock()
}
