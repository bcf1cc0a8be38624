package handler

import (
	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// --- Request → Service input ---

func toAlertInput(req alertRequest) ports.AlertInput {
	return ports.AlertInput{
		SensorID:       req.SensorID,
		Type:           domain.EventType(req.Type),
		Description:    req.Description,
		Status:         domain.AlertStatus(req.Status),
		PhotoURLs:      req.PhotoURLs,
		AssignedUserID: req.UserID,
	}
}

// --- Domain → HTTP response ---

func toAlertResponse(a *domain.Alert) alertResponse {
	resp := alertResponse{
		ID:          a.ID,
		SensorID:    a.SensorID,
		Type:        string(a.Type),
		Timestamp:   a.Timestamp.UTC(),
		Description: a.Description,
		Status:      string(a.Status),
		PhotoURLs:   a.PhotoURLs,
	}
	if resp.PhotoURLs == nil {
		resp.PhotoURLs = []string{}
	}
	if a.AssignedTo != nil {
		resp.AssignedTo = &assigneeResponse{
			UserID:   a.AssignedTo.UserID,
			Username: a.AssignedTo.Username,
		}
	}
	return resp
}

func toAlertListResponse(alerts []*domain.Alert) []alertResponse {
	out := make([]alertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = toAlertResponse(a)
	}
	return out
}
