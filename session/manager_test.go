package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"

	"fichaje/client"
	"fichaje/dashboard"
	"fichaje/models"
)

type fakeBackend struct {
	loginResp *models.LoginResponse
	loginErr  error
	logoutErr error
	pushErr   error

	logoutTokens []string
	pushTokens   []string
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Logout(ctx context.Context, token string) error {
	f.logoutTokens = append(f.logoutTokens, token)
	return f.logoutErr
}

func (f *fakeBackend) SavePushToken(ctx context.Context, token, pushToken string) error {
	f.pushTokens = append(f.pushTokens, pushToken)
	return f.pushErr
}

type fakeScheduler struct {
	scheduled []string
	ensured   []string
	cancelled []string
}

func (f *fakeScheduler) Schedule(id string) { f.scheduled = append(f.scheduled, id) }
func (f *fakeScheduler) Ensure(id string)   { f.ensured = append(f.ensured, id) }
func (f *fakeScheduler) Cancel(id string)   { f.cancelled = append(f.cancelled, id) }

type noopAPI struct{ dashboard.API }

func newManager(b *fakeBackend) (*Manager, *MemoryStore, *fakeScheduler, *dashboard.Registry) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := NewMemoryStore()
	sched := &fakeScheduler{}
	reg := dashboard.NewRegistry(noopAPI{}, log)
	return NewManager(store, b, reg, sched, log), store, sched, reg
}

func TestLoginPersistsAndSchedules(t *testing.T) {
	b := &fakeBackend{loginResp: &models.LoginResponse{
		AccessToken: "tok",
		Role:        "admin",
		Name:        "Ana",
		Reminder:    &models.Reminder{Title: "Falta tu entrada"},
	}}
	m, store, sched, reg := newManager(b)

	sess, err := m.Login(context.Background(), " ana@example.com ", "pw", "push-1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !sess.IsAdmin() || sess.Email != "ana@example.com" {
		t.Fatalf("session = %+v", sess)
	}
	if _, err := store.Get(context.Background(), sess.ID); err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != sess.ID {
		t.Fatalf("reminder not scheduled: %v", sched.scheduled)
	}
	if len(b.pushTokens) != 1 {
		t.Fatal("push token not forwarded")
	}
	if r, ok := reg.Get(sess.ID).TakeReminder(); !ok || r.Title != "Falta tu entrada" {
		t.Fatalf("login reminder not posted: %+v, %v", r, ok)
	}
}

func TestLoginErrors(t *testing.T) {
	m, _, _, _ := newManager(&fakeBackend{})
	_, err := m.Login(context.Background(), "", "", "")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Login() = %v", err)
	}
	if LoginMessage(err) != dashboard.MsgFieldsRequired {
		t.Fatalf("LoginMessage() = %q", LoginMessage(err))
	}

	m, _, _, _ = newManager(&fakeBackend{loginErr: &client.Error{StatusCode: http.StatusUnauthorized}})
	_, err = m.Login(context.Background(), "a@b.c", "bad", "")
	if LoginMessage(err) != MsgBadCredentials {
		t.Fatalf("LoginMessage() = %q", LoginMessage(err))
	}
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantRevoked bool
		wantNotice  string
	}{
		{"confirmed", nil, true, ""},
		{"already invalid 401", &client.Error{StatusCode: http.StatusUnauthorized}, true, ""},
		{"already invalid 422", &client.Error{StatusCode: http.StatusUnprocessableEntity}, true, ""},
		{"server refused", &client.Error{StatusCode: http.StatusInternalServerError}, false,
			"No se pudo cerrar sesión en servidor (HTTP 500). Se cerrará en el dispositivo."},
		{"network failure", fmt.Errorf("%w: timeout", client.ErrNetwork), false, MsgRevokeUnconfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{logoutErr: tt.err}
			m, store, sched, reg := newManager(b)
			sess := &models.Session{ID: "s1", AuthToken: "tok"}
			store.Create(context.Background(), sess)
			reg.Get("s1")

			res := m.Logout(context.Background(), sess)

			if !res.Cleared {
				t.Fatal("local session must always be cleared")
			}
			if res.Revoked != tt.wantRevoked || res.Notice != tt.wantNotice {
				t.Fatalf("Logout() = %+v", res)
			}
			if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("session still stored: %v", err)
			}
			if _, ok := reg.Lookup("s1"); ok {
				t.Fatal("dashboard state not dropped")
			}
			if len(sched.cancelled) == 0 {
				t.Fatal("reminder job not cancelled")
			}
			if len(b.logoutTokens) != 1 || b.logoutTokens[0] != "tok" {
				t.Fatalf("revocation not attempted: %v", b.logoutTokens)
			}
		})
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	b := &fakeBackend{}
	m, store, _, _ := newManager(b)
	sess := &models.Session{ID: "s2"}
	store.Create(context.Background(), sess)

	res := m.Logout(context.Background(), sess)
	if !res.Cleared || len(b.logoutTokens) != 0 {
		t.Fatalf("Logout() = %+v, calls = %v", res, b.logoutTokens)
	}
	if _, err := store.Get(context.Background(), "s2"); !errors.Is(err, ErrNotFound) {
		t.Fatal("session still stored")
	}
}

func TestResume(t *testing.T) {
	m, _, sched, _ := newManager(&fakeBackend{})

	m.Resume(&models.Session{ID: "live", AuthToken: "tok"})
	m.Resume(&models.Session{ID: "empty"})

	if len(sched.ensured) != 1 || sched.ensured[0] != "live" {
		t.Fatalf("ensured = %v, want [live]", sched.ensured)
	}
	if len(sched.scheduled) != 0 {
		t.Fatalf("Resume must not replace running jobs: %v", sched.scheduled)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() = %v", err)
	}
	s.Create(ctx, &models.Session{ID: "x", AuthToken: "t"})
	got, err := s.Get(ctx, "x")
	if err != nil || got.AuthToken != "t" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	got.AuthToken = "changed"
	again, _ := s.Get(ctx, "x")
	if again.AuthToken != "t" {
		t.Fatal("store returned a shared pointer")
	}
}
