package model

import (
	"net/http"
)

// DenialReason is the closed set of reasons a check-in or scan can be
// rejected. Reasons travel as values through the pipeline, never as errors;
// every call site handles denial as a first-class outcome.
type DenialReason string

const (
	ReasonMissingFields        DenialReason = "missing_fields"
	ReasonUnknownStudent       DenialReason = "unknown_student"
	ReasonInvalidToken         DenialReason = "invalid_token"
	ReasonAlreadyUsed          DenialReason = "already_used"
	ReasonExpired              DenialReason = "expired"
	ReasonDeviceMismatch       DenialReason = "device_mismatch"
	ReasonNoActiveSession      DenialReason = "no_active_session"
	ReasonAlreadyCheckedIn     DenialReason = "already_checked_in"
	ReasonDeviceAlreadyUsed    DenialReason = "device_already_used_in_session"
	ReasonStudentNotInClass    DenialReason = "student_not_in_class"
	ReasonCheckedInOtherDevice DenialReason = "already_checked_in_other_device"
	ReasonFingerprintBlocked   DenialReason = "fingerprint_blocked"
	ReasonInvalidPolicy        DenialReason = "invalid_policy"
)

// User-facing messages. Deliberately free of internal identifiers.
var denialMessages = map[DenialReason]string{
	ReasonMissingFields:        "Student ID and token are required.",
	ReasonUnknownStudent:       "Student ID not found in the roster.",
	ReasonInvalidToken:         "This attendance code is not valid.",
	ReasonAlreadyUsed:          "This attendance code has already been used.",
	ReasonExpired:              "This attendance code has expired. Ask for a new one.",
	ReasonDeviceMismatch:       "This code was opened on a different device and cannot be used here.",
	ReasonNoActiveSession:      "There is no attendance session running right now.",
	ReasonAlreadyCheckedIn:     "You are already checked in for this session.",
	ReasonDeviceAlreadyUsed:    "This device has already been used to check in for this session.",
	ReasonStudentNotInClass:    "You are not enrolled in the class for this session.",
	ReasonCheckedInOtherDevice: "You already checked in from another device.",
	ReasonFingerprintBlocked:   "This device has reached its check-in limit. Try again later.",
	ReasonInvalidPolicy:        "Policy values are out of range.",
}

var denialStatus = map[DenialReason]int{
	ReasonMissingFields:        http.StatusBadRequest,
	ReasonUnknownStudent:       http.StatusNotFound,
	ReasonInvalidToken:         http.StatusNotFound,
	ReasonAlreadyUsed:          http.StatusConflict,
	ReasonExpired:              http.StatusConflict,
	ReasonDeviceMismatch:       http.StatusForbidden,
	ReasonNoActiveSession:      http.StatusForbidden,
	ReasonAlreadyCheckedIn:     http.StatusConflict,
	ReasonDeviceAlreadyUsed:    http.StatusConflict,
	ReasonStudentNotInClass:    http.StatusForbidden,
	ReasonCheckedInOtherDevice: http.StatusConflict,
	ReasonFingerprintBlocked:   http.StatusForbidden,
	ReasonInvalidPolicy:        http.StatusBadRequest,
}

// Message returns the fixed user-facing message for the reason.
func (r DenialReason) Message() string {
	if msg, ok := denialMessages[r]; ok {
		return msg
	}
	return "Check-in was rejected."
}

// HTTPStatus returns the HTTP status code mapped to the reason.
func (r DenialReason) HTTPStatus() int {
	if code, ok := denialStatus[r]; ok {
		return code
	}
	return http.StatusBadRequest
}

func (r DenialReason) String() string {
	return string(r)
}
