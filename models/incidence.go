package models

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the backend's date format for incidence ranges.
const DateLayout = "2006-01-02"

type IncidenceType string

const (
	IncidenceVacation IncidenceType = "VACACIONES"
	IncidenceSickness IncidenceType = "BAJA"
	IncidenceAbsence  IncidenceType = "AUSENCIA"
	IncidenceForgot   IncidenceType = "OLVIDO"
	IncidenceOther    IncidenceType = "OTROS"
)

var IncidenceTypes = []IncidenceType{
	IncidenceVacation,
	IncidenceSickness,
	IncidenceAbsence,
	IncidenceForgot,
	IncidenceOther,
}

var (
	ErrIncidenceType  = errors.New("tipo de incidencia no válido")
	ErrIncidenceDates = errors.New("la fecha de fin no puede ser anterior a la de inicio")
)

type Incidence struct {
	ID          int64         `json:"id,omitempty"`
	Type        IncidenceType `json:"tipo"`
	Start       string        `json:"fecha_inicio"`
	End         string        `json:"fecha_fin"`
	Comment     string        `json:"comentario"`
	Status      string        `json:"estado,omitempty"`
	RequestedAt string        `json:"fecha_solicitud,omitempty"`
}

// Validate checks the request before it is sent. Dates are YYYY-MM-DD.
func (i *Incidence) Validate() error {
	valid := false
	for _, t := range IncidenceTypes {
		if strings.EqualFold(string(i.Type), string(t)) {
			i.Type = t
			valid = true
			break
		}
	}
	if !valid {
		return ErrIncidenceType
	}

	start, err := time.Parse(DateLayout, i.Start)
	if err != nil {
		return ErrIncidenceDates
	}
	if i.End == "" {
		i.End = i.Start
		return nil
	}
	end, err := time.Parse(DateLayout, i.End)
	if err != nil || end.Before(start) {
		return ErrIncidenceDates
	}
	return nil
}
