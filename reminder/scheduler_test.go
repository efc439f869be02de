package reminder

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fichaje/client"
	"fichaje/dashboard"
	"fichaje/models"
	"fichaje/session"
)

type reminderAPI struct {
	dashboard.API

	mu       sync.Mutex
	reminder *models.Reminder
	err      error
	calls    int
}

func (a *reminderAPI) Reminder(ctx context.Context, token string) (*models.Reminder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.reminder, a.err
}

func (a *reminderAPI) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type probe struct {
	mu  sync.Mutex
	err error
}

func (p *probe) Reachable(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

type chanNotifier chan models.Reminder

func (c chanNotifier) Notify(sessionID string, r models.Reminder) { c <- r }

func setup(t *testing.T, api *reminderAPI, p *probe) (*Scheduler, *dashboard.Registry, chanNotifier) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := session.NewMemoryStore()
	store.Create(context.Background(), &models.Session{ID: "s1", AuthToken: "tok"})

	reg := dashboard.NewRegistry(api, log)
	reg.Get("s1")
	notes := make(chanNotifier, 16)
	s := New(10*time.Millisecond, time.Second, store, reg, p, notes, log)
	t.Cleanup(s.Stop)
	return s, reg, notes
}

func waitInactive(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("job did not stop")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerNotifiesDueReminder(t *testing.T) {
	api := &reminderAPI{reminder: &models.Reminder{Title: "¿Has fichado?", ShouldNotify: true}}
	s, reg, notes := setup(t, api, &probe{})

	s.Schedule("s1")

	select {
	case r := <-notes:
		if r.Title != "¿Has fichado?" {
			t.Fatalf("notified %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reminder delivered")
	}
	if _, ok := reg.Get("s1").TakeReminder(); !ok {
		t.Fatal("reminder not posted to dashboard state")
	}
}

func TestSchedulerSkipsWithoutConnectivity(t *testing.T) {
	api := &reminderAPI{reminder: &models.Reminder{Title: "x", ShouldNotify: true}}
	s, _, _ := setup(t, api, &probe{err: errors.New("offline")})

	s.Schedule("s1")
	time.Sleep(60 * time.Millisecond)

	if api.Calls() != 0 {
		t.Fatalf("backend called %d times while offline", api.Calls())
	}
	if s.Active() != 1 {
		t.Fatal("job should keep running while offline")
	}
}

func TestSchedulerStopsOnRejectedToken(t *testing.T) {
	api := &reminderAPI{err: &client.Error{StatusCode: 401}}
	s, reg, _ := setup(t, api, &probe{})

	s.Schedule("s1")
	waitInactive(t, s)

	if !reg.Get("s1").TakeLogout() {
		t.Fatal("forced logout not posted")
	}
}

func TestSchedulerStopsWhenSessionGone(t *testing.T) {
	api := &reminderAPI{}
	s, _, _ := setup(t, api, &probe{})

	s.Schedule("unknown")
	waitInactive(t, s)
}

func TestScheduleReplacesAndCancel(t *testing.T) {
	api := &reminderAPI{}
	s, _, _ := setup(t, api, &probe{})

	s.Schedule("s1")
	s.Schedule("s1")
	if s.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", s.Active())
	}

	s.Cancel("s1")
	s.Cancel("s1")
	if s.Active() != 0 {
		t.Fatalf("Active() = %d after Cancel", s.Active())
	}
}

func TestEnsureKeepsRunningJob(t *testing.T) {
	s, _, _ := setup(t, &reminderAPI{}, &probe{})

	s.Ensure("s1")
	s.mu.Lock()
	first := s.jobs["s1"].id
	s.mu.Unlock()

	s.Ensure("s1")
	s.mu.Lock()
	second := s.jobs["s1"].id
	s.mu.Unlock()

	if s.Active() != 1 || first != second {
		t.Fatalf("Ensure replaced the job: %d -> %d, active %d", first, second, s.Active())
	}

	s.Cancel("s1")
	s.Ensure("s1")
	if s.Active() != 1 {
		t.Fatal("Ensure did not start a job after Cancel")
	}
}

func TestTickDoesNotRecreateClearedState(t *testing.T) {
	api := &reminderAPI{reminder: &models.Reminder{Title: "x", ShouldNotify: true}}
	s, reg, _ := setup(t, api, &probe{})
	reg.Drop("s1")

	s.Schedule("s1")
	waitInactive(t, s)

	if reg.Len() != 0 {
		t.Fatalf("registry holds %d states after the session was cleared", reg.Len())
	}
	if api.Calls() != 0 {
		t.Fatal("backend called for a cleared session")
	}
}

func TestStopRejectsNewJobs(t *testing.T) {
	s, _, _ := setup(t, &reminderAPI{}, &probe{})
	s.Schedule("s1")
	s.Stop()
	s.Schedule("s1")
	if s.Active() != 0 {
		t.Fatal("scheduled after Stop")
	}
}
