package model

import (
	"time"
)

// Session is a bounded window during which check-ins are accepted.
// At most one session is active system-wide at any time.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	IsActive  bool      `json:"isActive"`
	// ClassName, when set, restricts check-ins to students enrolled
	// in that class.
	ClassName *string   `json:"className,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student is one roster entry.
type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Course       string    `json:"course"`
	Year         int       `json:"year"`
	PresentCount int       `json:"presentCount"`
	AbsentCount  int       `json:"absentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
