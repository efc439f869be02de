package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"

	"fichaje/dashboard"
	"fichaje/logger"
	"fichaje/middleware"
	"fichaje/models"
	"fichaje/session"
)

var Pages = []string{
	"login", "dashboard", "fichajes", "resumen", "change-password", "incidencias",
}

// LoadTemplates pairs every page template with base.html.
func LoadTemplates(dir string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		t, err := template.New("").ParseFiles(
			filepath.Join(dir, "base.html"),
			filepath.Join(dir, page+".html"),
		)
		if err != nil {
			return nil, err
		}
		templates[page] = t
	}
	return templates, nil
}

// pageContext is what every authenticated handler works with.
type pageContext struct {
	sess  *models.Session
	state *dashboard.State
}

func loadPage(w http.ResponseWriter, r *http.Request, states *dashboard.Registry) (pageContext, bool) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return pageContext{}, false
	}
	return pageContext{sess: sess, state: states.Get(sess.ID)}, true
}

// loggedOut tears the session down when the backend rejected its token.
// It reports whether the response has already been written.
func loggedOut(w http.ResponseWriter, r *http.Request, pc pageContext, sessions *session.Manager) bool {
	if !pc.state.TakeLogout() {
		return false
	}
	sessions.Clear(r.Context(), pc.sess.ID)
	middleware.ClearSessionCookie(w)
	redirectWith(w, r, "/login", "error", dashboard.MsgSessionExpired)
	return true
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	if msg == "" {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, path+"?"+key+"="+url.QueryEscape(msg), http.StatusSeeOther)
}

// baseData carries the fields base.html reads on every page, consuming the
// pending toast.
func baseData(pc pageContext) map[string]interface{} {
	data := map[string]interface{}{
		"Session": pc.sess,
	}
	if t, ok := pc.state.TakeToast(); ok {
		if t.Positive {
			data["Success"] = t.Text
		} else {
			data["Error"] = t.Text
		}
	}
	return data
}

func render(w http.ResponseWriter, templates map[string]*template.Template, page string, data map[string]interface{}) {
	t, ok := templates[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		logger.Log.WithError(err).WithField("page", page).Error("template execution failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
