package handler

import "time"

// --- Request / Response types ---

type alertRequest struct {
	SensorID    string   `json:"sensorId"    validate:"required"`
	Type        string   `json:"type"        validate:"required,oneof=ACCIDENT HARD_BRAKING BUTTON"`
	Description string   `json:"description"`
	Status      string   `json:"status"      validate:"omitempty,oneof=NEW IN_PROGRESS RESOLVED"`
	PhotoURLs   []string `json:"photoUrls"`
	UserID      string   `json:"userId"`
}

type assigneeResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type alertResponse struct {
	ID          string            `json:"id"`
	SensorID    string            `json:"sensorId"`
	Type        string            `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	PhotoURLs   []string          `json:"photoUrls"`
	AssignedTo  *assigneeResponse `json:"assignedTo,omitempty"`
}
