package model

import (
	"time"
)

// AttendanceRecord is one committed, successful check-in. Immutable once
// written; the (session, student) and token unique keys are the final
// backstop against double admission.
type AttendanceRecord struct {
	ID              string    `json:"id"`
	Token           string    `json:"token"`
	FingerprintHash string    `json:"fingerprintHash"`
	StudentID       string    `json:"studentId"`
	SessionID       string    `json:"sessionId"`
	Timestamp       time.Time `json:"timestamp"`
}

// DeniedAttempt is one rejected check-in attempt, persisted before the
// denial is returned to the caller. Immutable once written.
type DeniedAttempt struct {
	ID              string    `json:"id"`
	Token           string    `json:"token"`
	FingerprintHash string    `json:"fingerprintHash"`
	StudentID       string    `json:"studentId"`
	StudentName     string    `json:"studentName,omitempty"`
	Course          string    `json:"course,omitempty"`
	SessionID       string    `json:"sessionId,omitempty"`
	Reason          string    `json:"reason"`
	Timestamp       time.Time `json:"timestamp"`
}

// DeviceFingerprint aggregates one device's successful check-in history.
// UsageCount is incremented exactly once per successful check-in.
type DeviceFingerprint struct {
	Hash       string    `json:"hash"`
	FirstSeen  time.Time `json:"firstSeen"`
	LastSeen   time.Time `json:"lastSeen"`
	UsageCount int       `json:"usageCount"`
	// RawSignals keeps the client-supplied signal blob for audit.
	RawSignals string `json:"rawSignals,omitempty"`
}
