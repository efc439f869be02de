package models

// MonthlySummary is the backend's hour balance for one month. Reliable is
// false when entries and exits could not all be paired.
type MonthlySummary struct {
	Month            string   `json:"mes"`
	TheoreticalHours float64  `json:"teoricas"`
	WorkedHours      float64  `json:"trabajadas"`
	Balance          float64  `json:"saldo"`
	Reliable         bool     `json:"calculo_confiable"`
	IncompleteDays   []string `json:"dias_incompletos"`
}

type Reminder struct {
	Title        string `json:"titulo"`
	Message      string `json:"mensaje"`
	ShouldNotify bool   `json:"avisar"`
}

type ChangePasswordRequest struct {
	Current string `json:"password_actual"`
	New     string `json:"password_nueva"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	Role        string    `json:"rol"`
	Name        string    `json:"nombre"`
	Reminder    *Reminder `json:"recordatorio,omitempty"`
}
