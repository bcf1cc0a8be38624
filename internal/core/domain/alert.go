package domain

import (
	"errors"
	"time"
)

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	StatusNew        AlertStatus = "NEW"
	StatusInProgress AlertStatus = "IN_PROGRESS"
	StatusResolved   AlertStatus = "RESOLVED"
)

// ParseAlertStatus maps a string to a known status.
func ParseAlertStatus(s string) (AlertStatus, error) {
	switch AlertStatus(s) {
	case StatusNew, StatusInProgress, StatusResolved:
		return AlertStatus(s), nil
	}
	return "", ErrInvalidInput
}

// EventType is the category of the incident a sensor reported.
type EventType string

const (
	EventAccident    EventType = "ACCIDENT"
	EventHardBraking EventType = "HARD_BRAKING"
	EventButton      EventType = "BUTTON"
)

// ParseEventType maps a string to a known event type.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventAccident, EventHardBraking, EventButton:
		return EventType(s), nil
	}
	return "", ErrInvalidInput
}

var ErrAlertNotFound = errors.New("alert not found")

// Assignee is the user an alert or sensor is assigned to. The username is a
// snapshot taken at assignment time so read paths avoid a user lookup.
type Assignee struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Alert is a reported fire-safety incident tied to a sensor.
//
// Status moves NEW → IN_PROGRESS → RESOLVED in normal operation, but no
// transition table is enforced: ChangeStatus accepts any valid status value
// regardless of the current one.
type Alert struct {
	ID          string      `json:"id"`
	SensorID    string      `json:"sensor_id"`
	Type        EventType   `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
	Status      AlertStatus `json:"status"`
	PhotoURLs   []string    `json:"photo_urls"`
	AssignedTo  *Assignee   `json:"assigned_to,omitempty"`
}
