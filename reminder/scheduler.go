// Package reminder runs the periodic "did you forget to clock?" check for
// every signed-in session.
package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fichaje/dashboard"
	"fichaje/models"
	"fichaje/session"
)

// Prober reports whether the backend can be reached right now.
type Prober interface {
	Reachable(ctx context.Context) error
}

// Notifier surfaces a due reminder to the user outside of a page render.
type Notifier interface {
	Notify(sessionID string, r models.Reminder)
}

// LogNotifier writes due reminders to the log. The reminder itself stays
// posted on the session's dashboard state for the browser to pick up.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) Notify(sessionID string, r models.Reminder) {
	title, msg := dashboard.ReminderText(r)
	n.Log.WithFields(logrus.Fields{"session_id": sessionID, "title": title}).Info(msg)
}

type job struct {
	id     uint64
	cancel context.CancelFunc
}

type Scheduler struct {
	interval time.Duration
	timeout  time.Duration
	sessions session.Store
	states   *dashboard.Registry
	probe    Prober
	notifier Notifier
	log      *logrus.Logger

	mu      sync.Mutex
	jobs    map[string]job
	nextID  uint64
	stopped bool
	wg      sync.WaitGroup
}

func New(interval, timeout time.Duration, sessions session.Store, states *dashboard.Registry, probe Prober, notifier Notifier, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		timeout:  timeout,
		sessions: sessions,
		states:   states,
		probe:    probe,
		notifier: notifier,
		log:      log,
		jobs:     make(map[string]job),
	}
}

// Schedule starts the session's job, replacing any job already running
// for it.
func (s *Scheduler) Schedule(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(sessionID)
}

// Ensure starts the session's job unless one is already running. Page
// loads call it so sessions that outlived a restart get their job back.
func (s *Scheduler) Ensure(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.jobs[sessionID]; running {
		return
	}
	s.start(sessionID)
}

// start must be called with s.mu held.
func (s *Scheduler) start(sessionID string) {
	if s.stopped {
		return
	}
	if existing, ok := s.jobs[sessionID]; ok {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.nextID++
	j := job{id: s.nextID, cancel: cancel}
	s.jobs[sessionID] = j

	s.wg.Add(1)
	go s.run(ctx, sessionID, j.id)
}

// Cancel stops the session's job. Unknown ids are ignored.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[sessionID]; ok {
		j.cancel()
		delete(s.jobs, sessionID)
	}
}

// Stop cancels every job and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, j := range s.jobs {
		j.cancel()
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Active returns the number of running jobs.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) run(ctx context.Context, sessionID string, jobID uint64) {
	defer s.wg.Done()
	defer s.forget(sessionID, jobID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.tick(ctx, sessionID) {
				return
			}
		}
	}
}

// tick runs one check. It returns false when the job should end.
func (s *Scheduler) tick(ctx context.Context, sessionID string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry := s.log.WithField("session_id", sessionID)

	if err := s.probe.Reachable(ctx); err != nil {
		entry.WithError(err).Debug("no connectivity, skipping reminder check")
		return true
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return false
	}
	if err != nil {
		entry.WithError(err).Warn("reminder check could not load session")
		return true
	}
	if !sess.HasToken() {
		return false
	}

	// A missing state means the session was cleared while this tick ran.
	state, ok := s.states.Lookup(sessionID)
	if !ok || ctx.Err() != nil {
		return false
	}
	if r := state.CheckReminder(ctx, sess.AuthToken); r != nil {
		s.notifier.Notify(sessionID, *r)
	}
	if state.LogoutPending() {
		entry.Info("token rejected, stopping reminder job")
		return false
	}
	return true
}

// forget removes the job entry if it still belongs to this run.
func (s *Scheduler) forget(sessionID string, jobID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[sessionID]; ok && j.id == jobID {
		j.cancel()
		delete(s.jobs, sessionID)
	}
}
