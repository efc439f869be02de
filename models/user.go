package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleWorker Role = "WORKER"
)

// ParseRole maps the backend "rol" field. Anything that is not an admin
// is treated as a worker.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), "admin") {
		return RoleAdmin
	}
	return RoleWorker
}

// Session is the locally held login: the backend bearer token plus the
// role flag it came with.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	AuthToken string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"not null;size:20" json:"role"`
	Name      string    `gorm:"size:200" json:"name"`
	Email     string    `gorm:"size:200" json:"email"`
}

func (s *Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// HasToken reports whether the session still carries a usable token.
func (s *Session) HasToken() bool {
	return s != nil && strings.TrimSpace(s.AuthToken) != ""
}

// Bearer returns the Authorization header value for the session token.
func (s *Session) Bearer() string {
	return "Bearer " + s.AuthToken
}
