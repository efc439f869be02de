package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"fichaje/config"
	"fichaje/dashboard"
	"fichaje/location"
	"fichaje/models"
	"fichaje/nfc"
	"fichaje/session"
)

const dashboardHistoryLen = 5

type ClockHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	sessions  *session.Manager
	states    *dashboard.Registry
}

func NewClockHandler(cfg *config.Config, templates map[string]*template.Template, sessions *session.Manager, states *dashboard.Registry) *ClockHandler {
	return &ClockHandler{
		config:    cfg,
		templates: templates,
		sessions:  sessions,
		states:    states,
	}
}

type historyRow struct {
	Line  string
	Entry bool
}

func historyRows(records []models.ClockRecord, limit int) []historyRow {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, historyRow{Line: dashboard.HistoryLine(rec), Entry: rec.IsEntry()})
	}
	return rows
}

func (h *ClockHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	pc.state.Refresh(r.Context(), pc.sess.AuthToken)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}
	h.sessions.Resume(pc.sess)

	snap := pc.state.Snapshot()
	data := baseData(pc)
	data["ClockedIn"] = snap.ClockedIn
	data["ButtonLabel"] = dashboard.ClockButtonLabel(snap.ClockedIn)
	data["Summary"] = dashboard.PresentSummary(snap.Summary)
	data["History"] = historyRows(snap.History, dashboardHistoryLen)
	data["RefreshedAt"] = snap.RefreshedAt
	if rem, ok := pc.state.TakeReminder(); ok {
		title, msg := dashboard.ReminderText(rem)
		data["ReminderTitle"] = title
		data["ReminderMessage"] = msg
	}
	render(w, h.templates, "dashboard", data)
}

// Clock handles the manual clock button.
func (h *ClockHandler) Clock(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, false)
}

// ClockNFC handles a clock triggered by reading the office tag.
func (h *ClockHandler) ClockNFC(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, true)
}

func (h *ClockHandler) clock(w http.ResponseWriter, r *http.Request, viaNFC bool) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		pc.state.PostToast(dashboard.MsgUnknownError, false)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	var in dashboard.ClockInput
	if viaNFC {
		code, err := nfc.Read(r.FormValue("nfc_payload"))
		if err != nil {
			reason := err.Error()
			var tagErr *nfc.TagError
			if errors.As(err, &tagErr) {
				reason = tagErr.Reason
			}
			pc.state.PostToast(dashboard.MsgNFCErrorPrefix+reason, false)
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		in.NFCCode = code
	}
	if pos, err := location.FromForm(r.FormValue("lat"), r.FormValue("lon"), r.FormValue("accuracy")); err == nil {
		in.Position = &pos
	}

	pc.state.SubmitClock(r.Context(), pc.sess.AuthToken, in)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *ClockHandler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	pc.state.RequestHistory(r.Context(), pc.sess.AuthToken)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}

	data := baseData(pc)
	if records, ok := pc.state.TakeHistoryDialog(); ok {
		data["History"] = historyRows(records, 0)
		data["Loaded"] = true
	}
	render(w, h.templates, "fichajes", data)
}

func (h *ClockHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	pc.state.RequestHistory(r.Context(), pc.sess.AuthToken)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}
	records, ok := pc.state.TakeHistoryDialog()
	if !ok {
		http.Redirect(w, r, "/fichajes", http.StatusSeeOther)
		return
	}

	filename := fmt.Sprintf("fichajes_%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"Tipo", "Fecha", "Latitud", "Longitud"})

	for _, rec := range records {
		writer.Write([]string{
			string(rec.Type),
			rec.Timestamp,
			formatCoord(rec.Latitude),
			formatCoord(rec.Longitude),
		})
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// SummaryPage shows the balance of any month, defaulting to the current one.
func (h *ClockHandler) SummaryPage(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	now := time.Now()
	month, year := int(now.Month()), now.Year()
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y >= 2000 && y <= 2100 {
		year = y
	}

	summary := pc.state.MonthSummary(r.Context(), pc.sess.AuthToken, month, year)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}

	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}

	data := baseData(pc)
	data["Summary"] = dashboard.PresentSummary(summary)
	data["SelectedMonth"] = month
	data["SelectedYear"] = year
	data["Months"] = months
	render(w, h.templates, "resumen", data)
}

func (h *ClockHandler) IncidencesPage(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	pc.state.ListIncidences(r.Context(), pc.sess.AuthToken)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}

	data := baseData(pc)
	if list, ok := pc.state.TakeIncidences(); ok {
		data["Incidences"] = list
	}
	data["Types"] = models.IncidenceTypes
	data["Today"] = time.Now().Format(models.DateLayout)
	render(w, h.templates, "incidencias", data)
}

func (h *ClockHandler) CreateIncidence(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		pc.state.PostToast(models.ErrIncidenceType.Error(), false)
		http.Redirect(w, r, "/incidencias", http.StatusSeeOther)
		return
	}

	inc := models.Incidence{
		Type:    models.IncidenceType(r.FormValue("type")),
		Start:   r.FormValue("start"),
		End:     r.FormValue("end"),
		Comment: r.FormValue("comment"),
	}
	pc.state.CreateIncidence(r.Context(), pc.sess.AuthToken, inc)
	if loggedOut(w, r, pc, h.sessions) {
		return
	}
	http.Redirect(w, r, "/incidencias", http.StatusSeeOther)
}

type reminderPoll struct {
	Pending bool   `json:"pending"`
	Title   string `json:"titulo,omitempty"`
	Message string `json:"mensaje,omitempty"`
	Logout  bool   `json:"logout,omitempty"`
}

// ReminderPoll lets the open page pick up reminders posted by the
// background job without a reload.
func (h *ClockHandler) ReminderPoll(w http.ResponseWriter, r *http.Request) {
	pc, ok := loadPage(w, r, h.states)
	if !ok {
		return
	}

	if pc.state.TakeLogout() {
		h.sessions.Clear(r.Context(), pc.sess.ID)
		writeJSON(w, http.StatusUnauthorized, reminderPoll{Logout: true})
		return
	}

	rem, ok := pc.state.TakeReminder()
	if !ok {
		writeJSON(w, http.StatusOK, reminderPoll{})
		return
	}
	title, msg := dashboard.ReminderText(rem)
	writeJSON(w, http.StatusOK, reminderPoll{Pending: true, Title: title, Message: msg})
}
