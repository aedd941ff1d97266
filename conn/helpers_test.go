package conn

import (
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type routerMock struct {
	mock.Mock
}

func (r *routerMock) Activate(param string) error {
	return r.Called(param).Error(0)
}

type recordingSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSink) ReportLog(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *recordingSink) joined() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.texts, "")
}

// manualScheduler queues tasks until the test runs them.
type manualScheduler struct {
	mu     sync.Mutex
	queue  []func()
	delays []time.Duration
}

func (m *manualScheduler) Post(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, task)
}

func (m *manualScheduler) PostDelayed(task func(), delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, delay)
	m.queue = append(m.queue, task)
}

func (m *manualScheduler) runNext() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	task := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()
	task()
	return true
}

func (m *manualScheduler) recordedDelays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.delays...)
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func testEntry() *log.Entry {
	return log.WithField("test", true)
}
