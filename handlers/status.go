package handlers

import (
	"context"
	"net/http"
	"time"

	"fichaje/dashboard"
	"fichaje/middleware"
)

// Prober reports whether the backend answers.
type Prober interface {
	Reachable(ctx context.Context) error
}

// JobCounter reports how many reminder jobs are running.
type JobCounter interface {
	Active() int
}

type StatusHandler struct {
	probe   Prober
	states  *dashboard.Registry
	jobs    JobCounter
	timeout time.Duration
}

func NewStatusHandler(probe Prober, states *dashboard.Registry, jobs JobCounter, timeout time.Duration) *StatusHandler {
	return &StatusHandler{
		probe:   probe,
		states:  states,
		jobs:    jobs,
		timeout: timeout,
	}
}

// Health answers 200 while this process is up. The backend state is
// reported but does not fail the check.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"backend": h.backendState(r.Context()),
	})
}

// Overview is the admin-only view of what this process is holding.
func (h *StatusHandler) Overview(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"admin":         sess.DisplayName(),
		"backend":       h.backendState(r.Context()),
		"states":        h.states.Len(),
		"reminder_jobs": h.jobs.Active(),
	})
}

func (h *StatusHandler) backendState(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.probe.Reachable(ctx); err != nil {
		return "unreachable"
	}
	return "reachable"
}
