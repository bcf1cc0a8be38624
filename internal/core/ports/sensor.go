package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// SensorRepository defines persistence operations for sensors.
type SensorRepository interface {
	Create(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error)
	FindByID(ctx context.Context, id string) (*domain.Sensor, error)
	FindAll(ctx context.Context) ([]*domain.Sensor, error)
	Update(ctx context.Context, s *domain.Sensor) error
	Delete(ctx context.Context, id string) error
}

// SensorInput carries data for creating or updating a sensor.
type SensorInput struct {
	Model          string
	Location       string
	AssignedUserID string
}

// SensorService provides sensor CRUD.
type SensorService interface {
	Create(ctx context.Context, in SensorInput) (*domain.Sensor, error)
	Update(ctx context.Context, id string, in SensorInput) (*domain.Sensor, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*domain.Sensor, error)
	GetByID(ctx context.Context, id string) (*domain.Sensor, error)
}
