package domain

import "errors"

var ErrSensorNotFound = errors.New("sensor not found")

// Sensor is a reporting device installed at a location.
type Sensor struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Location   string    `json:"location"`
	AssignedTo *Assignee `json:"assigned_to,omitempty"`
}
