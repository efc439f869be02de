package dashboard

import (
	"fmt"
	"math"
	"strings"

	"fichaje/models"
)

type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneWarning  Tone = "warning"
)

const (
	StatusNoData        = "SIN DATOS DEL MES"
	StatusPendingReview = "PENDIENTE DE REVISIÓN"
	StatusExtraHours    = "HORAS EXTRA ACUMULADAS"
	StatusNegativeMonth = "SIN HORAS EXTRA (MES EN NEGATIVO)"
	StatusNoExtraYet    = "AÚN NO HAY HORAS EXTRA ESTE MES"
)

// SummaryView is what the hours card shows.
type SummaryView struct {
	Value         string
	Unit          string
	Tone          Tone
	Status        string
	PendingReview bool
	Detail        []string
}

// PresentSummary formats the monthly balance. Only positive balances of a
// reliable month are shown; an unreliable month is always zero and marked
// for review.
func PresentSummary(s *models.MonthlySummary) SummaryView {
	v := SummaryView{Value: "0.00", Unit: "h", Tone: ToneNeutral}
	if s == nil {
		v.Status = StatusNoData
		return v
	}
	v.Detail = summaryDetail(s)

	if !s.Reliable {
		v.Tone = ToneWarning
		v.Status = StatusPendingReview
		v.PendingReview = true
		return v
	}

	extra := math.Max(0, s.Balance)
	switch {
	case extra > 0:
		v.Value = fmt.Sprintf("+%.2f", extra)
		v.Tone = TonePositive
		v.Status = StatusExtraHours
	case s.Balance < 0:
		v.Status = StatusNegativeMonth
	default:
		v.Status = StatusNoExtraYet
	}
	return v
}

func summaryDetail(s *models.MonthlySummary) []string {
	lines := []string{
		"Mes: " + s.Month,
		fmt.Sprintf("Teóricas: %.2f h", s.TheoreticalHours),
		fmt.Sprintf("Trabajadas: %.2f h", s.WorkedHours),
		fmt.Sprintf("Diferencia: %.2f h", s.Balance),
	}
	if !s.Reliable {
		lines = append(lines, "Cálculo pendiente de revisión.")
		if len(s.IncompleteDays) > 0 {
			lines = append(lines, "Días incompletos: "+strings.Join(s.IncompleteDays, ", "))
		} else {
			lines = append(lines, "Motivo: faltan fichajes o pares ENTRADA/SALIDA.")
		}
		return lines
	}
	if s.Balance >= 0 {
		return append(lines, fmt.Sprintf("Horas extra (mes): %.2f h", s.Balance))
	}
	return append(lines,
		"Horas extra (mes): 0.00 h",
		fmt.Sprintf("Horas pendientes (mes): %.2f h", math.Abs(s.Balance)),
	)
}

// ClockButtonLabel names the action the next clock will perform.
func ClockButtonLabel(in bool) string {
	if in {
		return "FICHAR SALIDA"
	}
	return "FICHAR ENTRADA"
}

// HistoryLine renders one record as "TYPE yyyy-mm-dd hh:mm".
func HistoryLine(r models.ClockRecord) string {
	kind := string(r.Type)
	if kind == "" {
		kind = "REGISTRO"
	}
	when := "Sin fecha"
	if r.Timestamp != "" {
		when = strings.Replace(r.Timestamp, "T", " ", 1)
		if len(when) > 16 {
			when = when[:16]
		}
	}
	return kind + " " + when
}

// ReminderText fills in defaults for a reminder with blank fields.
func ReminderText(r models.Reminder) (title, message string) {
	title, message = strings.TrimSpace(r.Title), strings.TrimSpace(r.Message)
	if title == "" {
		title = DefaultReminderTitle
	}
	if message == "" {
		message = DefaultReminderMessage
	}
	return title, message
}
