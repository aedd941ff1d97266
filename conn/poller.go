package conn

import (
	"errors"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultNegotiatingInterval is the poll interval while the tunnel is still being set up.
	DefaultNegotiatingInterval = 100 * time.Millisecond
	// DefaultConnectedInterval is the poll interval once the tunnel is established.
	DefaultConnectedInterval = 1000 * time.Millisecond
)

type outputSource interface {
	ReadAvailable() ([]byte, error)
}

// poller drains the tunnel output, detects the establishment of the tunnel and reschedules itself.
// Runs never overlap, so its own fields need no locking.
type poller struct {
	out        outputSource
	life       *lifecycle
	classifier Classifier
	router     RoutingActivator
	scheduler  Scheduler
	entry      *log.Entry

	interval          time.Duration
	connectedInterval time.Duration
	routed            bool
}

func (p *poller) run() {
	p.readOutput()

	if !p.routed && p.life.State() == Connecting {
		c := p.classifier.Classify(p.life.FullLog())
		if c.Phase == Established {
			p.establish(c)
		}
	}

	if p.life.IsRunning() {
		p.scheduler.PostDelayed(p.run, p.interval)
		return
	}
	// the process is gone and its output fully buffered, pick up what arrived after the read above
	p.readOutput()
	p.entry.Debug("not running, so disconnected")
	p.life.transition(Disconnected)
}

// readOutput appends whatever the process wrote since the last call to the cumulative log.
func (p *poller) readOutput() {
	chunk, err := p.out.ReadAvailable()
	var text strings.Builder
	text.Write(chunk)
	if err != nil && !errors.Is(err, io.EOF) {
		p.entry.WithError(err).Warn("reading tunnel output failed")
		text.WriteString("Read interrupted")
	}
	if text.Len() > 0 {
		p.entry.Debugf("just read from iodine: %q", text.String())
		tunnelOutputBytes.Add(float64(len(chunk)))
		p.life.sendLog(text.String())
	}
}

// establish runs once per attempt, on the first run that sees the tunnel set up.
func (p *poller) establish(c Classification) {
	if !p.life.transition(Connected) {
		return
	}
	p.routed = true

	param, err := c.RoutingParam()
	if err != nil {
		tamperingEvents.Inc()
		p.entry.WithError(err).Warn("tunnel output tampering detected")
		p.life.sendLog("ERROR: TAMPERING. This is supposed to be an ip address: " + c.Endpoint + "\n")
	} else if c.Direct {
		p.entry.WithField("endpoint", param).Info("direct communication with server")
		p.life.sendLog("Direct communication with " + param + "\n")
	}
	p.life.setRoutingParam(param)

	if err := p.router.Activate(param); err != nil {
		routingActivations.WithLabelValues("failure").Inc()
		p.entry.WithError(err).Error("routing configuration failed")
		var spawnErr *SpawnError
		if errors.As(err, &spawnErr) {
			p.life.sendLog("su invocation failed\n")
		}
		p.life.sendLog("Routing configuration failed\n")
	} else {
		routingActivations.WithLabelValues("success").Inc()
		p.life.sendLog("Routing configuration complete\n")
	}
	p.interval = p.connectedInterval
}
