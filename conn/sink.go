package conn

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogSink receives every piece of text the connector reports: tunnel output as well as its own status messages.
// Implementations must return quickly, the poller calls ReportLog inline.
type LogSink interface {
	ReportLog(text string)
}

// LogSinkFunc adapts a plain function to LogSink.
type LogSinkFunc func(text string)

func (f LogSinkFunc) ReportLog(text string) {
	f(text)
}

// LogrusSink writes reported text to the standard logrus logger, one entry per line.
type LogrusSink struct {
	Entry *log.Entry
}

func (s LogrusSink) ReportLog(text string) {
	entry := s.Entry
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			continue
		}
		entry.Info(line)
	}
}

// safeSink makes sure a misbehaving sink can not take the supervision down with it.
type safeSink struct {
	sink LogSink
}

func (s safeSink) ReportLog(text string) {
	if s.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("log sink panicked, dropping message")
		}
	}()
	s.sink.ReportLog(text)
}
