package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// AlertRepository defines persistence operations for alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *domain.Alert) (*domain.Alert, error)
	FindByID(ctx context.Context, id string) (*domain.Alert, error)
	FindAll(ctx context.Context) ([]*domain.Alert, error)
	FindByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error)
	FindBySensor(ctx context.Context, sensorID string) ([]*domain.Alert, error)
	Update(ctx context.Context, a *domain.Alert) error
	Delete(ctx context.Context, id string) error
}

// AlertInput carries all data for creating or fully overwriting an alert.
// AssignedUserID is resolved against the user repository when non-empty.
type AlertInput struct {
	SensorID       string
	Type           domain.EventType
	Description    string
	Status         domain.AlertStatus // empty means NEW on create
	PhotoURLs      []string
	AssignedUserID string
}

// AlertService owns the alert lifecycle: creation, field overwrite,
// assignment, status changes and the photo-evidence list.
type AlertService interface {
	Create(ctx context.Context, in AlertInput) (*domain.Alert, error)
	Update(ctx context.Context, id string, in AlertInput) (*domain.Alert, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, id, userID string) (*domain.Alert, error)
	ChangeStatus(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error)
	AddPhoto(ctx context.Context, id, url string) (*domain.Alert, error)
	RemovePhoto(ctx context.Context, id, url string) (*domain.Alert, error)
	GetAll(ctx context.Context) ([]*domain.Alert, error)
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	GetByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error)
	GetBySensor(ctx context.Context, sensorID string) ([]*domain.Alert, error)
}
