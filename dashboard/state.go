// Package dashboard keeps the per-session view state: whether the user is
// clocked in, the monthly summary, recent history and the one-shot notices
// the next page render has to show.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fichaje/client"
	"fichaje/location"
	"fichaje/models"
)

// API is the part of the backend client the dashboard needs.
type API interface {
	Clock(ctx context.Context, token string, lat, lon float64) (*models.ClockRecord, error)
	ClockNFC(ctx context.Context, token string, lat, lon float64, code string) (*models.ClockRecord, error)
	History(ctx context.Context, token string) ([]models.ClockRecord, error)
	Summary(ctx context.Context, token string, month, year int) (*models.MonthlySummary, error)
	Reminder(ctx context.Context, token string) (*models.Reminder, error)
	ChangePassword(ctx context.Context, token, current, newPassword string) error
	CreateIncidence(ctx context.Context, token string, inc models.Incidence) (*models.Incidence, error)
	ListIncidences(ctx context.Context, token string) ([]models.Incidence, error)
}

type Toast struct {
	Text     string
	Positive bool
}

// ClockInput is one clock attempt. A nil Position means the device gave
// no GPS fix; an empty NFCCode means a manual clock.
type ClockInput struct {
	Position *location.Coordinates
	NFCCode  string
}

func (in ClockInput) viaNFC() bool {
	return in.NFCCode != ""
}

// Snapshot is a consistent copy of the state for rendering.
type Snapshot struct {
	ClockedIn   bool
	Summary     *models.MonthlySummary
	History     []models.ClockRecord
	RefreshedAt time.Time
}

type State struct {
	api API
	log *logrus.Entry

	mu          sync.Mutex
	in          bool
	summary     *models.MonthlySummary
	history     []models.ClockRecord
	refreshedAt time.Time

	toast         Notice[Toast]
	reminder      Notice[models.Reminder]
	logout        Notice[bool]
	historyDialog Notice[[]models.ClockRecord]
	incidences    Notice[[]models.Incidence]
}

func NewState(api API, log *logrus.Entry) *State {
	return &State{api: api, log: log}
}

// Refresh reloads presence state and the current month summary.
func (s *State) Refresh(ctx context.Context, token string) {
	s.refreshStatus(ctx, token)
	s.refreshSummary(ctx, token)
}

func (s *State) refreshStatus(ctx context.Context, token string) {
	history, err := s.api.History(ctx, token)
	if err != nil {
		switch client.KindOf(err) {
		case client.KindAuthExpired:
			s.forceLogout()
		case client.KindNetworkUnavailable:
			s.postToast(MsgNoServer, false)
		default:
			s.log.WithError(err).Warn("history refresh failed")
		}
		return
	}

	s.mu.Lock()
	s.history = history
	s.in = models.ClockedIn(history)
	s.refreshedAt = time.Now()
	s.mu.Unlock()
}

func (s *State) refreshSummary(ctx context.Context, token string) {
	summary, err := s.api.Summary(ctx, token, 0, 0)
	if err != nil {
		if client.KindOf(err) == client.KindAuthExpired {
			s.forceLogout()
			return
		}
		s.log.WithError(err).Debug("summary refresh failed")
		return
	}
	s.mu.Lock()
	s.summary = summary
	s.mu.Unlock()
}

// MonthSummary loads the summary of an arbitrary month without touching
// the dashboard card. Failures are reported as a toast and yield nil.
func (s *State) MonthSummary(ctx context.Context, token string, month, year int) *models.MonthlySummary {
	summary, err := s.api.Summary(ctx, token, month, year)
	if err != nil {
		s.reportFailure(err, MsgNetwork)
		return nil
	}
	return summary
}

// SubmitClock sends a manual or NFC clock action and refreshes the view
// on success.
func (s *State) SubmitClock(ctx context.Context, token string, in ClockInput) {
	if in.Position == nil {
		s.postToast(MsgEnableGPS, false)
		s.refreshStatus(ctx, token)
		return
	}

	var (
		rec *models.ClockRecord
		err error
	)
	lat, lon := in.Position.Latitude, in.Position.Longitude
	if in.viaNFC() {
		rec, err = s.api.ClockNFC(ctx, token, lat, lon, in.NFCCode)
	} else {
		rec, err = s.api.Clock(ctx, token, lat, lon)
	}

	if err != nil {
		switch client.KindOf(err) {
		case client.KindAuthExpired:
			s.postToast(MsgSessionExpired, false)
			s.forceLogout()
		case client.KindNetworkUnavailable:
			if in.viaNFC() {
				s.postToast(MsgNetworkNFC, false)
			} else {
				s.postToast(MsgNetworkClock, false)
			}
		default:
			if errors.Is(err, client.ErrDecode) {
				s.postToast(MsgUnknownError, false)
				break
			}
			s.postToast(TranslateError(err), false)
		}
		s.log.WithError(err).WithField("nfc", in.viaNFC()).Info("clock rejected")
		return
	}

	entered := rec.IsEntry()
	if entered {
		s.postToast(MsgWelcome, true)
	} else {
		s.postToast(MsgGoodbye, true)
	}
	s.mu.Lock()
	s.in = entered
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"type": rec.Type, "nfc": in.viaNFC()}).Info("clock registered")

	s.refreshSummary(ctx, token)
	s.refreshStatus(ctx, token)
}

// CheckReminder asks the backend whether the user should be reminded to
// clock. A due reminder is posted as a notice and returned.
func (s *State) CheckReminder(ctx context.Context, token string) *models.Reminder {
	r, err := s.api.Reminder(ctx, token)
	if err != nil {
		if client.KindOf(err) == client.KindAuthExpired {
			s.forceLogout()
		}
		return nil
	}
	if r == nil || !ShouldShow(*r) {
		return nil
	}
	s.PostReminder(*r)
	return r
}

// ShouldShow accepts an explicit avisar flag or, failing that, any
// non-blank text.
func ShouldShow(r models.Reminder) bool {
	if r.ShouldNotify {
		return true
	}
	return strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.Message) != ""
}

func (s *State) PostReminder(r models.Reminder) {
	s.mu.Lock()
	s.reminder.post(r)
	s.mu.Unlock()
}

// RequestHistory loads the history for the history dialog.
func (s *State) RequestHistory(ctx context.Context, token string) {
	history, err := s.api.History(ctx, token)
	if err != nil {
		switch client.KindOf(err) {
		case client.KindAuthExpired:
			s.forceLogout()
		case client.KindNetworkUnavailable:
			s.postToast(MsgNetwork, false)
		default:
			s.postToast(MsgHistoryFailed, false)
		}
		return
	}
	s.mu.Lock()
	s.historyDialog.post(history)
	s.mu.Unlock()
}

// ChangePassword validates locally before asking the backend.
func (s *State) ChangePassword(ctx context.Context, token, current, newPassword string) bool {
	current, newPassword = strings.TrimSpace(current), strings.TrimSpace(newPassword)
	if current == "" || newPassword == "" {
		s.postToast(MsgFieldsRequired, false)
		return false
	}
	if len([]rune(newPassword)) < minPasswordLen {
		s.postToast(MsgPasswordTooShort, false)
		return false
	}

	err := s.api.ChangePassword(ctx, token, current, newPassword)
	switch client.KindOf(err) {
	case client.KindNone:
		s.postToast(MsgPasswordChanged, true)
		return true
	case client.KindAuthExpired:
		s.forceLogout()
	case client.KindNetworkUnavailable:
		s.postToast(MsgNetwork, false)
	default:
		s.postToast(MsgPasswordFailed, false)
	}
	return false
}

// CreateIncidence validates and submits an incidence request.
func (s *State) CreateIncidence(ctx context.Context, token string, inc models.Incidence) bool {
	if err := inc.Validate(); err != nil {
		s.postToast(err.Error(), false)
		return false
	}
	if _, err := s.api.CreateIncidence(ctx, token, inc); err != nil {
		s.reportFailure(err, MsgNetwork)
		return false
	}
	s.postToast(MsgIncidenceSent, true)
	return true
}

// ListIncidences posts the user's incidences for the incidences page.
func (s *State) ListIncidences(ctx context.Context, token string) {
	list, err := s.api.ListIncidences(ctx, token)
	if err != nil {
		switch client.KindOf(err) {
		case client.KindAuthExpired:
			s.forceLogout()
		case client.KindNetworkUnavailable:
			s.postToast(MsgNetwork, false)
		default:
			s.postToast(MsgIncidencesFailed, false)
		}
		return
	}
	s.mu.Lock()
	s.incidences.post(list)
	s.mu.Unlock()
}

// PostToast lets callers outside the state (NFC reader, GPS) report to
// the user through the same channel.
func (s *State) PostToast(text string, positive bool) {
	s.postToast(text, positive)
}

func (s *State) reportFailure(err error, networkMsg string) {
	switch client.KindOf(err) {
	case client.KindAuthExpired:
		s.forceLogout()
	case client.KindNetworkUnavailable:
		s.postToast(networkMsg, false)
	default:
		s.postToast(TranslateError(err), false)
	}
}

func (s *State) postToast(text string, positive bool) {
	s.mu.Lock()
	s.toast.post(Toast{Text: text, Positive: positive})
	s.mu.Unlock()
}

func (s *State) forceLogout() {
	s.mu.Lock()
	s.logout.post(true)
	s.mu.Unlock()
	s.log.Info("backend rejected token, forcing logout")
}

func (s *State) ClockedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in
}

func (s *State) Summary() *models.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]models.ClockRecord, len(s.history))
	copy(history, s.history)
	return Snapshot{
		ClockedIn:   s.in,
		Summary:     s.summary,
		History:     history,
		RefreshedAt: s.refreshedAt,
	}
}

func (s *State) TakeToast() (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toast.take()
}

func (s *State) TakeReminder() (models.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminder.take()
}

// TakeLogout reports a forced logout once.
func (s *State) TakeLogout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.logout.take()
	return ok && v
}

// LogoutPending peeks without consuming; the reminder job uses it to stop.
func (s *State) LogoutPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logout.peek()
}

func (s *State) TakeHistoryDialog() ([]models.ClockRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyDialog.take()
}

func (s *State) TakeIncidences() ([]models.Incidence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incidences.take()
}
