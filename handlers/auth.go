package handlers

import (
	"html/template"
	"net/http"

	"fichaje/config"
	"fichaje/dashboard"
	"fichaje/middleware"
	"fichaje/session"
)

type AuthHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	sessions  *session.Manager
	states    *dashboard.Registry
}

func NewAuthHandler(cfg *config.Config, templates map[string]*template.Template, sessions *session.Manager, states *dashboard.Registry) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		templates: templates,
		sessions:  sessions,
		states:    states,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	render(w, h.templates, "login", data)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/login", "error", dashboard.MsgFieldsRequired)
		return
	}

	sess, err := h.sessions.Login(r.Context(),
		r.FormValue("email"),
		r.FormValue("password"),
		r.FormValue("push_token"),
	)
	if err != nil {
		redirectWith(w, r, "/login", "error", session.LoginMessage(err))
		return
	}

	if err := middleware.SetSessionCookie(w, sess, h.config.JWTExpiration); err != nil {
		h.sessions.Clear(r.Context(), sess.ID)
		redirectWith(w, r, "/login", "error", dashboard.MsgUnknownError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout always ends on the login page, whatever the backend answered.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	res := h.sessions.Logout(r.Context(), sess)
	middleware.ClearSessionCookie(w)

	if res.Notice != "" {
		redirectWith(w, r, "/login", "error", res.Notice)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}
	render(w, h.templates, "change-password", baseData(pc))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		pc.state.PostToast(dashboard.MsgFieldsRequired, false)
		http.Redirect(w, r, "/change-password", http.StatusSeeOther)
		return
	}

	changed := pc.state.ChangePassword(r.Context(), pc.sess.AuthToken,
		r.FormValue("current_password"),
		r.FormValue("new_password"),
	)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}
	if changed {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/change-password", http.StatusSeeOther)
}

// SavePushToken registers the browser's push token. Best effort.
func (h *AuthHandler) SavePushToken(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err == nil {
		h.sessions.SavePushToken(r.Context(), sess, r.FormValue("token"))
	}
	w.WriteHeader(http.StatusNoContent)
}
