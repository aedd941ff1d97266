package conn

import (
	"sync"
	"time"
)

// Scheduler runs units of work. Tasks posted to the same Scheduler must never run concurrently.
type Scheduler interface {
	// Post runs task as soon as possible.
	Post(task func())
	// PostDelayed runs task once delay has passed.
	PostDelayed(task func(), delay time.Duration)
}

// TimerScheduler runs all tasks one after another on a single goroutine.
type TimerScheduler struct {
	tasks     chan func()
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewTimerScheduler starts the worker goroutine. Call Close to stop it.
func NewTimerScheduler() *TimerScheduler {
	s := &TimerScheduler{
		tasks: make(chan func(), 64),
		quit:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *TimerScheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case task := <-s.tasks:
			task()
		case <-s.quit:
			return
		}
	}
}

// Post queues task. Tasks posted after Close are dropped.
func (s *TimerScheduler) Post(task func()) {
	select {
	case <-s.quit:
		return
	default:
	}
	select {
	case s.tasks <- task:
	case <-s.quit:
	}
}

func (s *TimerScheduler) PostDelayed(task func(), delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.Post(task)
	})
}

// Close stops the worker and waits for the running task to finish. Queued tasks are dropped.
func (s *TimerScheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}
