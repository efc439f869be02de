// Package session creates and tears down logins against the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fichaje/client"
	"fichaje/dashboard"
	"fichaje/models"
)

const (
	MsgBadCredentials     = "Usuario o contraseña incorrectos"
	MsgRevokeUnconfirmed  = "Sesión cerrada en el dispositivo. No se pudo confirmar la revocación en servidor."
	msgRevokeFailedFormat = "No se pudo cerrar sesión en servidor (HTTP %d). Se cerrará en el dispositivo."
)

var ErrMissingCredentials = errors.New("email and password are required")

// Backend is the subset of the client used to open and close sessions.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	SavePushToken(ctx context.Context, token, pushToken string) error
}

// Scheduler starts and stops the per-session reminder job.
type Scheduler interface {
	Schedule(sessionID string)
	Ensure(sessionID string)
	Cancel(sessionID string)
}

type Manager struct {
	store     Store
	backend   Backend
	states    *dashboard.Registry
	reminders Scheduler
	log       *logrus.Logger
}

func NewManager(store Store, backend Backend, states *dashboard.Registry, reminders Scheduler, log *logrus.Logger) *Manager {
	return &Manager{
		store:     store,
		backend:   backend,
		states:    states,
		reminders: reminders,
		log:       log,
	}
}

// Login authenticates against the backend and persists the new session.
// pushToken is optional.
func (m *Manager) Login(ctx context.Context, email, password, pushToken string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		AuthToken: resp.AccessToken,
		Role:      models.ParseRole(resp.Role),
		Name:      resp.Name,
		Email:     email,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	state := m.states.Get(sess.ID)
	if resp.Reminder != nil && dashboard.ShouldShow(*resp.Reminder) {
		state.PostReminder(*resp.Reminder)
	}
	m.reminders.Schedule(sess.ID)

	if pushToken != "" {
		m.SavePushToken(ctx, sess, pushToken)
	}

	m.log.WithFields(logrus.Fields{"session_id": sess.ID, "role": sess.Role}).Info("session opened")
	return sess, nil
}

// SavePushToken forwards the device push token. Failures only get logged.
func (m *Manager) SavePushToken(ctx context.Context, sess *models.Session, pushToken string) {
	if !sess.HasToken() || strings.TrimSpace(pushToken) == "" {
		return
	}
	if err := m.backend.SavePushToken(ctx, sess.AuthToken, pushToken); err != nil {
		m.log.WithError(err).WithField("session_id", sess.ID).Debug("push token not saved")
	}
}

// Resume makes sure a live session has its reminder job. Sessions loaded
// from the store after a restart have none until their next page load.
func (m *Manager) Resume(sess *models.Session) {
	if !sess.HasToken() {
		return
	}
	m.reminders.Ensure(sess.ID)
}

// Get loads a session by id.
func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	return m.store.Get(ctx, id)
}

// LogoutResult tells the caller what to show on the login page. Cleared is
// always true: local teardown does not depend on the backend.
type LogoutResult struct {
	Revoked bool
	Cleared bool
	Notice  string
}

// Logout revokes the token server-side when possible and always clears
// the local session.
func (m *Manager) Logout(ctx context.Context, sess *models.Session) LogoutResult {
	if sess == nil {
		return LogoutResult{Cleared: true}
	}
	m.reminders.Cancel(sess.ID)

	result := LogoutResult{Cleared: true}
	if sess.HasToken() {
		result.Revoked, result.Notice = m.revoke(ctx, sess)
	}

	m.Clear(ctx, sess.ID)
	return result
}

func (m *Manager) revoke(ctx context.Context, sess *models.Session) (bool, string) {
	err := m.backend.Logout(ctx, sess.AuthToken)
	entry := m.log.WithField("session_id", sess.ID)

	switch client.KindOf(err) {
	case client.KindNone:
		return true, ""
	case client.KindAuthExpired:
		entry.Debug("token already invalid at logout")
		return true, ""
	case client.KindNetworkUnavailable:
		entry.WithError(err).Warn("logout not confirmed by backend")
		return false, MsgRevokeUnconfirmed
	default:
		entry.WithError(err).Warn("backend refused logout")
		if status := client.StatusOf(err); status != 0 {
			return false, fmt.Sprintf(msgRevokeFailedFormat, status)
		}
		return false, MsgRevokeUnconfirmed
	}
}

// Clear drops everything held locally for the session. It is also the
// forced-logout path, where the backend has already rejected the token.
func (m *Manager) Clear(ctx context.Context, sessionID string) {
	m.reminders.Cancel(sessionID)
	m.states.Drop(sessionID)
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.WithError(err).WithField("session_id", sessionID).Error("failed to delete session")
		return
	}
	m.log.WithField("session_id", sessionID).Info("session closed")
}

// LoginMessage maps a Login error to the text shown on the login form.
func LoginMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return dashboard.MsgFieldsRequired
	}
	switch client.KindOf(err) {
	case client.KindAuthExpired:
		return MsgBadCredentials
	case client.KindNetworkUnavailable:
		return dashboard.MsgNoServer
	}
	switch client.StatusOf(err) {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
		return MsgBadCredentials
	}
	return dashboard.TranslateError(err)
}
