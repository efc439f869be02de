package models

import "strings"

type ClockType string

const (
	ClockIn  ClockType = "ENTRADA"
	ClockOut ClockType = "SALIDA"
)

// ClockRecord is a server-issued clock entry. Timestamp is kept as the
// raw ISO string the backend sends.
type ClockRecord struct {
	ID        int64     `json:"id,omitempty"`
	Type      ClockType `json:"tipo"`
	Timestamp string    `json:"fecha_hora"`
	Latitude  *float64  `json:"latitud,omitempty"`
	Longitude *float64  `json:"longitud,omitempty"`
}

func (r ClockRecord) IsEntry() bool {
	return IsEntry(r.Type)
}

// IsEntry compares case-insensitively, the backend is not consistent.
func IsEntry(t ClockType) bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), string(ClockIn))
}

// ClockedIn derives presence from a newest-first history: the user is in
// only when the latest record is an entry.
func ClockedIn(history []ClockRecord) bool {
	return len(history) > 0 && history[0].IsEntry()
}

type ClockRequest struct {
	Latitude  float64 `json:"latitud"`
	Longitude float64 `json:"longitud"`
	NFCData   *string `json:"nfc_data"`
}
