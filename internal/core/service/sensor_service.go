package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// SensorService provides sensor CRUD. Sensors are simple reference entities;
// the interesting lifecycle lives on alerts.
type SensorService struct {
	repo  ports.SensorRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewSensorService(repo ports.SensorRepository, users ports.UserRepository, log zerolog.Logger) *SensorService {
	return &SensorService{repo: repo, users: users, log: log}
}

func (s *SensorService) Create(ctx context.Context, in ports.SensorInput) (*domain.Sensor, error) {
	if in.Model == "" || in.Location == "" {
		return nil, domain.ErrInvalidInput
	}

	sensor := &domain.Sensor{Model: in.Model, Location: in.Location}
	if in.AssignedUserID != "" {
		user, err := s.users.FindByID(ctx, in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		sensor.AssignedTo = &domain.Assignee{UserID: user.ID, Username: user.Username}
	}

	created, err := s.repo.Create(ctx, sensor)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("sensor_id", created.ID).Str("model", created.Model).
		Str("location", created.Location).Msg("sensor created")
	return created, nil
}

func (s *SensorService) Update(ctx context.Context, id string, in ports.SensorInput) (*domain.Sensor, error) {
	sensor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.AssignedUserID != "" {
		user, err := s.users.FindByID(ctx, in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		sensor.AssignedTo = &domain.Assignee{UserID: user.ID, Username: user.Username}
	} else {
		sensor.AssignedTo = nil
	}

	sensor.Model = in.Model
	sensor.Location = in.Location
	if err := s.repo.Update(ctx, sensor); err != nil {
		return nil, err
	}

	s.log.Info().Str("sensor_id", id).Msg("sensor updated")
	return sensor, nil
}

func (s *SensorService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("sensor_id", id).Msg("sensor deleted")
	return nil
}

func (s *SensorService) GetAll(ctx context.Context) ([]*domain.Sensor, error) {
	return s.repo.FindAll(ctx)
}

func (s *SensorService) GetByID(ctx context.Context, id string) (*domain.Sensor, error) {
	return s.repo.FindByID(ctx, id)
}
