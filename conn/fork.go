package conn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const (
	// DefaultTunnelBinary is where the iodine client is installed.
	DefaultTunnelBinary = "/data/data/org.airportinternet/iodine"
	// DefaultRoutingScript is the script that routes traffic through the tunnel.
	DefaultRoutingScript = "/data/data/org.airportinternet/routing.sh"
	// DefaultStartTimeout bounds how long Start waits for the tunnel process to be spawned.
	DefaultStartTimeout = 10 * time.Second
)

// CommandProvider builds the arguments for the tunnel binary from the user settings.
type CommandProvider interface {
	CommandArray() []string
}

// Connector is the contract of a tunnel connector.
type Connector interface {
	Start(ctx context.Context, setting CommandProvider) error
	Stop() error
	State() State
	IsConnected() bool
	IsRunning() bool
	FullLog() string
}

var _ Connector = (*ForkConnector)(nil)

// Options configures a ForkConnector.
type Options struct {
	TunnelBinary        string
	RoutingScript       string
	NegotiatingInterval time.Duration
	ConnectedInterval   time.Duration
	StartTimeout        time.Duration
}

// DefaultOptions returns the paths and intervals used on the device.
func DefaultOptions() Options {
	return Options{
		TunnelBinary:        DefaultTunnelBinary,
		RoutingScript:       DefaultRoutingScript,
		NegotiatingInterval: DefaultNegotiatingInterval,
		ConnectedInterval:   DefaultConnectedInterval,
		StartTimeout:        DefaultStartTimeout,
	}
}

// Status is a point in time view of a connector.
type Status struct {
	Session      string `json:"session"`
	State        string `json:"state"`
	Running      bool   `json:"running"`
	Connected    bool   `json:"connected"`
	RoutingParam string `json:"routingParam"`
	LogBytes     int    `json:"logBytes"`
}

// attempt holds everything that belongs to a single Start/Stop cycle.
type attempt struct {
	id   uuid.UUID
	life *lifecycle
	sup  *supervisor
}

// ForkConnector runs the tunnel binary as a child process and supervises it.
type ForkConnector struct {
	opts       Options
	sink       LogSink
	scheduler  Scheduler
	classifier Classifier
	router     RoutingActivator
	spawn      func(argv []string) (*ProcessHandle, error)

	// cycle serializes Start and Stop
	cycle   sync.Mutex
	mu      sync.Mutex
	current *attempt
}

// NewForkConnector creates a connector that reports to sink and polls on scheduler.
func NewForkConnector(opts Options, sink LogSink, scheduler Scheduler) *ForkConnector {
	if opts.NegotiatingInterval <= 0 {
		opts.NegotiatingInterval = DefaultNegotiatingInterval
	}
	if opts.ConnectedInterval <= 0 {
		opts.ConnectedInterval = DefaultConnectedInterval
	}
	return &ForkConnector{
		opts:       opts,
		sink:       safeSink{sink: sink},
		scheduler:  scheduler,
		classifier: MarkerClassifier{},
		router:     NewScriptRouting(opts.RoutingScript),
		spawn:      Spawn,
	}
}

// Start spawns the tunnel binary with the arguments of setting and schedules the poller. It returns once the
// process handle was handed over. If the binary can not be started the attempt ends Disconnected and the
// *SpawnError is returned.
func (f *ForkConnector) Start(ctx context.Context, setting CommandProvider) error {
	f.cycle.Lock()
	defer f.cycle.Unlock()

	if prev := f.attempt(); prev != nil && prev.life.IsRunning() {
		return ErrAlreadyRunning
	}

	argv := slices.Insert(slices.Clone(setting.CommandArray()), 0, f.opts.TunnelBinary)
	id := uuid.New()
	entry := log.WithField("session", id.String())
	entry.WithField("cmd", strings.Join(argv, " ")).Debugf("command line; size: %d", len(argv))

	a := &attempt{id: id, life: newLifecycle(f.sink, entry)}
	a.sup = newSupervisor(argv, a.life, entry)
	a.sup.spawn = f.spawn
	f.setAttempt(a)

	a.life.transition(Connecting)
	a.sup.start()

	if f.opts.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.StartTimeout)
		defer cancel()
	}
	if err := a.sup.gate.waitContext(ctx); err != nil {
		entry.WithError(err).Error("tunnel process was not handed over in time")
		a.life.sendLog("Failed to start iodine\n")
		a.life.transition(Disconnected)
		go a.sup.stop()
		return fmt.Errorf("Start: %w", ErrStartTimeout)
	}
	if a.sup.handle == nil {
		a.life.transition(Disconnected)
		return fmt.Errorf("Start: %w", a.sup.spawnErr)
	}

	p := &poller{
		out:               a.sup.handle,
		life:              a.life,
		classifier:        f.classifier,
		router:            f.router,
		scheduler:         f.scheduler,
		entry:             entry,
		interval:          f.opts.NegotiatingInterval,
		connectedInterval: f.opts.ConnectedInterval,
	}
	f.scheduler.Post(p.run)
	return nil
}

// Stop kills the tunnel process and waits until the supervisor has seen it exit.
func (f *ForkConnector) Stop() error {
	f.cycle.Lock()
	defer f.cycle.Unlock()

	a := f.attempt()
	if a == nil {
		return ErrNotRunning
	}
	a.sup.stop()
	a.life.transition(Disconnected)
	return nil
}

func (f *ForkConnector) attempt() *attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *ForkConnector) setAttempt(a *attempt) {
	f.mu.Lock()
	f.current = a
	f.mu.Unlock()
}

// State of the latest attempt, Idle if Start was never called.
func (f *ForkConnector) State() State {
	if a := f.attempt(); a != nil {
		return a.life.State()
	}
	return Idle
}

func (f *ForkConnector) IsConnected() bool {
	return f.State() == Connected
}

func (f *ForkConnector) IsRunning() bool {
	if a := f.attempt(); a != nil {
		return a.life.IsRunning()
	}
	return false
}

// FullLog of the latest attempt.
func (f *ForkConnector) FullLog() string {
	if a := f.attempt(); a != nil {
		return a.life.FullLog()
	}
	return ""
}

// RoutingParam passed (or to be passed) to the routing script by the latest attempt.
func (f *ForkConnector) RoutingParam() string {
	if a := f.attempt(); a != nil {
		return a.life.RoutingParam()
	}
	return IndirectRouting
}

func (f *ForkConnector) Status() Status {
	a := f.attempt()
	if a == nil {
		return Status{State: Idle.String(), RoutingParam: IndirectRouting}
	}
	state := a.life.State()
	return Status{
		Session:      a.id.String(),
		State:        state.String(),
		Running:      a.life.IsRunning(),
		Connected:    state == Connected,
		RoutingParam: a.life.RoutingParam(),
		LogBytes:     a.life.logLen(),
	}
}
