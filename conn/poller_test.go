package conn

import (
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeOutput struct {
	chunks []string
	errs   []error
}

func (f *fakeOutput) ReadAvailable() ([]byte, error) {
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if len(f.chunks) == 0 {
		return nil, err
	}
	c := f.chunks[0]
	f.chunks = f.chunks[1:]
	return []byte(c), err
}

func setupPoller(chunks ...string) (*poller, *routerMock, *manualScheduler, *recordingSink) {
	sink := &recordingSink{}
	life := newLifecycle(sink, testEntry())
	life.transition(Connecting)
	life.setRunning(true)
	router := new(routerMock)
	sched := &manualScheduler{}
	p := &poller{
		out:               &fakeOutput{chunks: chunks},
		life:              life,
		classifier:        MarkerClassifier{},
		router:            router,
		scheduler:         sched,
		entry:             testEntry(),
		interval:          DefaultNegotiatingInterval,
		connectedInterval: DefaultConnectedInterval,
	}
	sched.Post(p.run)
	return p, router, sched, sink
}

func runPolls(sched *manualScheduler, n int) {
	for i := 0; i < n; i++ {
		sched.runNext()
	}
}

func TestPollerDirectEndpoint(t *testing.T) {
	p, router, sched, sink := setupPoller("Sending raw traffic directly to 10.0.0.5\nConnection setup complete, transmitting data.\n")
	router.On("Activate", "10.0.0.5").Return(nil).Once()

	runPolls(sched, 1)

	assert.Equal(t, Connected, p.life.State())
	assert.Equal(t, "10.0.0.5", p.life.RoutingParam())
	router.AssertNumberOfCalls(t, "Activate", 1)
	assert.Contains(t, sink.joined(), "Direct communication with 10.0.0.5")
	assert.Contains(t, sink.joined(), "Routing configuration complete")
}

func TestPollerTamperingFallsBackToIndirect(t *testing.T) {
	p, router, sched, sink := setupPoller("raw traffic directly to ; rm -rf /\nsetup complete, transmitting")
	router.On("Activate", IndirectRouting).Return(nil).Once()

	runPolls(sched, 1)

	assert.Equal(t, Connected, p.life.State())
	assert.Equal(t, IndirectRouting, p.life.RoutingParam())
	router.AssertCalled(t, "Activate", IndirectRouting)
	assert.Contains(t, sink.joined(), "ERROR: TAMPERING")
}

func TestPollerMarkerSplitOverReads(t *testing.T) {
	p, router, sched, _ := setupPoller("Connection setup comp", "lete, transmitting data.\n")
	router.On("Activate", IndirectRouting).Return(nil)

	runPolls(sched, 1)
	assert.Equal(t, Connecting, p.life.State())
	router.AssertNotCalled(t, "Activate", mock.Anything)

	runPolls(sched, 1)
	assert.Equal(t, Connected, p.life.State())
	router.AssertNumberOfCalls(t, "Activate", 1)
}

func TestPollerActivatesRoutingOnce(t *testing.T) {
	p, router, sched, _ := setupPoller("setup complete, ", "setup complete, ", "setup complete, ")
	router.On("Activate", IndirectRouting).Return(nil)

	runPolls(sched, 5)

	assert.Equal(t, Connected, p.life.State())
	router.AssertNumberOfCalls(t, "Activate", 1)
}

func TestPollerIntervals(t *testing.T) {
	_, router, sched, _ := setupPoller("negotiating\n", "still negotiating\n", "setup complete, ", "data\n")
	router.On("Activate", IndirectRouting).Return(nil)

	runPolls(sched, 5)

	assert.Equal(t, []time.Duration{
		DefaultNegotiatingInterval,
		DefaultNegotiatingInterval,
		DefaultConnectedInterval,
		DefaultConnectedInterval,
		DefaultConnectedInterval,
	}, sched.recordedDelays())
}

func TestPollerStopsWhenNotRunning(t *testing.T) {
	p, _, sched, _ := setupPoller("some output\n")
	p.life.setRunning(false)

	runPolls(sched, 1)

	assert.Equal(t, Disconnected, p.life.State())
	assert.Equal(t, 0, sched.pending())
	assert.Equal(t, "some output\n", p.life.FullLog())
}

func TestPollerNoRoutingAfterDisconnect(t *testing.T) {
	p, router, sched, _ := setupPoller("setup complete, ")
	p.life.setRunning(false)
	p.life.transition(Disconnected)

	runPolls(sched, 1)

	assert.Equal(t, Disconnected, p.life.State())
	router.AssertNotCalled(t, "Activate", mock.Anything)
}

func TestPollerReadErrorIsNotFatal(t *testing.T) {
	p, _, sched, sink := setupPoller()
	p.out = &fakeOutput{errs: []error{errors.New("broken pipe")}}

	runPolls(sched, 1)

	assert.Equal(t, Connecting, p.life.State())
	assert.Equal(t, 1, sched.pending())
	assert.Contains(t, sink.joined(), "Read interrupted")
}

func TestPollerIgnoresEOF(t *testing.T) {
	p, _, sched, sink := setupPoller()
	p.out = &fakeOutput{errs: []error{io.EOF}}

	runPolls(sched, 1)

	assert.Equal(t, "", sink.joined())
	assert.Equal(t, 1, sched.pending())
}

func TestPollerRoutingFailureKeepsConnected(t *testing.T) {
	p, router, sched, sink := setupPoller("setup complete, ")
	router.On("Activate", IndirectRouting).Return(&RoutingError{Param: IndirectRouting, ExitCode: 3, Err: errors.New("exit status 3")})

	runPolls(sched, 2)

	assert.Equal(t, Connected, p.life.State())
	router.AssertNumberOfCalls(t, "Activate", 1)
	assert.Contains(t, sink.joined(), "Routing configuration failed")
	assert.NotContains(t, sink.joined(), "su invocation failed")
	assert.NotContains(t, sink.joined(), "Routing configuration complete")
}

func TestPollerRoutingSpawnFailure(t *testing.T) {
	_, router, sched, sink := setupPoller("setup complete, ")
	router.On("Activate", IndirectRouting).Return(&RoutingError{
		Param:    IndirectRouting,
		ExitCode: -1,
		Err:      &SpawnError{Path: "su", Err: exec.ErrNotFound},
	})

	runPolls(sched, 1)

	assert.Contains(t, sink.joined(), "su invocation failed")
	assert.Contains(t, sink.joined(), "Routing configuration failed")
}

func TestPollerReadsRemainingOutputAfterExit(t *testing.T) {
	p, _, sched, sink := setupPoller("negotiating\n", "iodine: could not resolve nameserver\n")
	p.life.setRunning(false)

	runPolls(sched, 1)

	assert.Equal(t, Disconnected, p.life.State())
	assert.Equal(t, "negotiating\niodine: could not resolve nameserver\n", p.life.FullLog())
	assert.Contains(t, sink.joined(), "could not resolve nameserver")
}

func TestPollerRejectedRoutingParamIsNotSuFailure(t *testing.T) {
	_, router, sched, sink := setupPoller("setup complete, ")
	router.On("Activate", IndirectRouting).Return(&RoutingError{Param: IndirectRouting, ExitCode: -1, Err: ErrTampering})

	runPolls(sched, 1)

	assert.Contains(t, sink.joined(), "Routing configuration failed")
	assert.NotContains(t, sink.joined(), "su invocation failed")
}
