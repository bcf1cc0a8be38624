package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

type stubSensorRepo struct {
	sensors map[string]*domain.Sensor
	nextID  int
}

func newStubSensorRepo() *stubSensorRepo {
	return &stubSensorRepo{sensors: make(map[string]*domain.Sensor)}
}

func cloneSensor(s *domain.Sensor) *domain.Sensor {
	if s == nil {
		return nil
	}
	clone := *s
	if s.AssignedTo != nil {
		assignee := *s.AssignedTo
		clone.AssignedTo = &assignee
	}
	return &clone
}

func (r *stubSensorRepo) Create(_ context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	copy := cloneSensor(s)
	r.nextID++
	copy.ID = "s" + strconv.Itoa(r.nextID)
	r.sensors[copy.ID] = cloneSensor(copy)
	return copy, nil
}

func (r *stubSensorRepo) FindByID(_ context.Context, id string) (*domain.Sensor, error) {
	s, ok := r.sensors[id]
	if !ok {
		return nil, domain.ErrSensorNotFound
	}
	return cloneSensor(s), nil
}

func (r *stubSensorRepo) FindAll(_ context.Context) ([]*domain.Sensor, error) {
	out := make([]*domain.Sensor, 0, len(r.sensors))
	for _, s := range r.sensors {
		out = append(out, cloneSensor(s))
	}
	return out, nil
}

func (r *stubSensorRepo) Update(_ context.Context, s *domain.Sensor) error {
	if _, ok := r.sensors[s.ID]; !ok {
		return domain.ErrSensorNotFound
	}
	r.sensors[s.ID] = cloneSensor(s)
	return nil
}

func (r *stubSensorRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sensors[id]; !ok {
		return domain.ErrSensorNotFound
	}
	delete(r.sensors, id)
	return nil
}

func newTestSensorService(t *testing.T) (*SensorService, *stubSensorRepo, *stubUserRepo) {
	t.Helper()
	repo := newStubSensorRepo()
	users := newStubUserRepo()
	return NewSensorService(repo, users, zerolog.Nop()), repo, users
}

func TestSensorService_Create_RequiresModelAndLocation(t *testing.T) {
	svc, _, _ := newTestSensorService(t)

	if _, err := svc.Create(context.Background(), ports.SensorInput{Location: "basement"}); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing model, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.SensorInput{Model: "FS-100"}); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing location, got %v", err)
	}
}

func TestSensorService_Create_WithAssignee(t *testing.T) {
	svc, _, users := newTestSensorService(t)
	owner, err := users.Create(context.Background(), &domain.User{Username: "tech"})
	if err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	sensor, err := svc.Create(context.Background(), ports.SensorInput{
		Model: "FS-100", Location: "basement", AssignedUserID: owner.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if sensor.AssignedTo == nil || sensor.AssignedTo.Username != "tech" {
		t.Fatalf("unexpected assignee: %+v", sensor.AssignedTo)
	}

	if _, err := svc.Create(context.Background(), ports.SensorInput{
		Model: "FS-100", Location: "attic", AssignedUserID: "missing",
	}); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSensorService_Update_ClearsAssignee(t *testing.T) {
	svc, _, users := newTestSensorService(t)
	owner, err := users.Create(context.Background(), &domain.User{Username: "tech"})
	if err != nil {
		t.Fatalf("user create failed: %v", err)
	}
	sensor, err := svc.Create(context.Background(), ports.SensorInput{
		Model: "FS-100", Location: "basement", AssignedUserID: owner.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(context.Background(), sensor.ID, ports.SensorInput{
		Model: "FS-200", Location: "roof",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Model != "FS-200" || updated.Location != "roof" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.AssignedTo != nil {
		t.Fatalf("empty userId should clear the assignee")
	}
}

func TestSensorService_Delete(t *testing.T) {
	svc, _, _ := newTestSensorService(t)
	sensor, err := svc.Create(context.Background(), ports.SensorInput{Model: "FS-100", Location: "basement"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), sensor.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), sensor.ID); err != domain.ErrSensorNotFound {
		t.Fatalf("expected ErrSensorNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), sensor.ID); err != domain.ErrSensorNotFound {
		t.Fatalf("expected ErrSensorNotFound, got %v", err)
	}
}
