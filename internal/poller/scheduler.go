// Package poller drives periodic polls and one-shot delayed refreshes.
//
// Ticks are not serialised: every tick runs its task in its own goroutine,
// so a slow poll may overlap the next one. Tasks must tolerate that.
package poller

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	task     func()

	stopCh chan struct{}
	wg     sync.WaitGroup
	// started is set by Start; running only while the loop is live.
	started bool
	running bool
	closed  bool

	timers map[*time.Timer]struct{}
}

// New creates a scheduler that runs task every interval. An interval of
// zero or less disables the periodic loop; one-shots still work.
func New(interval time.Duration, task func()) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		timers:   make(map[*time.Timer]struct{}),
	}
}

// Start begins the periodic loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.started = true
	if s.running || s.interval <= 0 {
		return
	}
	s.startLocked()
}

func (s *Scheduler) startLocked() {
	s.stopCh = make(chan struct{})
	s.running = true
	s.wg.Add(1)
	go s.loop(s.interval, s.stopCh)
}

func (s *Scheduler) loop(interval time.Duration, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			go s.task()
		}
	}
}

func (s *Scheduler) stopLoopLocked() {
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

// SetInterval changes the period. Once started, the loop restarts with the
// new period; a value of zero or less pauses it until a positive one is set.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopLoopLocked()
	s.interval = interval
	if interval > 0 && s.started {
		s.startLocked()
	}
}

// Interval returns the configured period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether the periodic loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// After runs fn once after delay, independently of the periodic loop. It
// reports false if the scheduler has been stopped.
func (s *Scheduler) After(delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, pending := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()
		if pending {
			fn()
		}
	})
	s.timers[t] = struct{}{}
	return true
}

// Pending returns the number of one-shots not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop ends the loop and cancels pending one-shots. Tasks already running
// are left to finish. A stopped scheduler schedules nothing further.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	s.started = false
	s.stopLoopLocked()
	for t := range s.timers {
		t.Stop()
		delete(s.timers, t)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
