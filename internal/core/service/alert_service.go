package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/api/metrics"
	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// AlertCache abstracts the read-through cache for alert queries (Redis).
// Lookups that fail report a miss; the service then falls back to the
// repository, so a degraded cache only costs performance.
type AlertCache interface {
	GetAlert(ctx context.Context, id string) (*domain.Alert, bool)
	SetAlert(ctx context.Context, a *domain.Alert)
	GetAlerts(ctx context.Context, key string) ([]*domain.Alert, bool)
	SetAlerts(ctx context.Context, key string, alerts []*domain.Alert)
	InvalidateAlert(ctx context.Context, id string)
	InvalidateLists(ctx context.Context, keys ...string)
}

// Aggregate cache keys. Single-alert entries are keyed by id inside the
// cache implementation.
const CacheKeyAllAlerts = "alerts:all"

func CacheKeyAlertsByStatus(status domain.AlertStatus) string {
	return fmt.Sprintf("alerts:status:%s", status)
}

func CacheKeyAlertsBySensor(sensorID string) string {
	return fmt.Sprintf("alerts:sensor:%s", sensorID)
}

// AlertService owns the alert lifecycle. Every mutation invalidates the
// single-entity entry, the all-alerts aggregate, the by-status aggregates
// for both old and new status, and the by-sensor aggregate; when in doubt
// the code over-invalidates.
type AlertService struct {
	repo     ports.AlertRepository
	users    ports.UserRepository
	cache    AlertCache
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewAlertService(
	repo ports.AlertRepository,
	users ports.UserRepository,
	cache AlertCache,
	notifier ports.Notifier,
	log zerolog.Logger,
) *AlertService {
	return &AlertService{repo: repo, users: users, cache: cache, notifier: notifier, log: log}
}

// Create stores a new alert. Status defaults to NEW, the timestamp is the
// creation time, and an assignee id must resolve to an existing user.
func (s *AlertService) Create(ctx context.Context, in ports.AlertInput) (*domain.Alert, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusNew
	}

	alert := &domain.Alert{
		SensorID:    in.SensorID,
		Type:        in.Type,
		Timestamp:   time.Now().UTC(),
		Description: in.Description,
		Status:      status,
		PhotoURLs:   append([]string(nil), in.PhotoURLs...),
	}

	if in.AssignedUserID != "" {
		assignee, err := s.resolveAssignee(ctx, in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		alert.AssignedTo = assignee
	}

	created, err := s.repo.Create(ctx, alert)
	if err != nil {
		s.log.Error().Err(err).Str("sensor_id", in.SensorID).Msg("failed to create alert")
		return nil, err
	}

	s.invalidateFor(ctx, created, created.Status)

	// Best effort: notification failure never fails the creation.
	s.notifier.AlertCreated(ctx, created)

	metrics.AlertsCreatedTotal.WithLabelValues(string(created.Type)).Inc()
	s.log.Info().Str("alert_id", created.ID).Str("sensor_id", created.SensorID).
		Str("type", string(created.Type)).Msg("alert created")

	return created, nil
}

// Update overwrites type, description, photo list and assignee of an
// existing alert; status is overwritten only when provided.
func (s *AlertService) Update(ctx context.Context, id string, in ports.AlertInput) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := alert.Status

	if in.AssignedUserID != "" {
		assignee, err := s.resolveAssignee(ctx, in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		alert.AssignedTo = assignee
	} else {
		alert.AssignedTo = nil
	}

	alert.Type = in.Type
	alert.Description = in.Description
	if in.Status != "" {
		alert.Status = in.Status
	}
	alert.PhotoURLs = append([]string(nil), in.PhotoURLs...)

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, alert, oldStatus)
	s.log.Info().Str("alert_id", id).Msg("alert updated")
	return alert, nil
}

// Delete removes an alert.
func (s *AlertService) Delete(ctx context.Context, id string) error {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateFor(ctx, alert, alert.Status)
	s.log.Info().Str("alert_id", id).Msg("alert deleted")
	return nil
}

// Assign sets the alert's assignee.
func (s *AlertService) Assign(ctx context.Context, id, userID string) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolveAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	alert.AssignedTo = assignee
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, alert, alert.Status)
	s.log.Info().Str("alert_id", id).Str("user_id", userID).Msg("alert assigned")
	return alert, nil
}

// ChangeStatus sets the status unconditionally; no transition table is
// enforced, backward moves included.
func (s *AlertService) ChangeStatus(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := alert.Status

	alert.Status = status
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, alert, oldStatus)
	metrics.AlertStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.log.Info().Str("alert_id", id).Str("from", string(oldStatus)).
		Str("to", string(status)).Msg("alert status changed")
	return alert, nil
}

// AddPhoto appends a photo URL to the alert's evidence list.
func (s *AlertService) AddPhoto(ctx context.Context, id, url string) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	alert.PhotoURLs = append(alert.PhotoURLs, url)
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, alert, alert.Status)
	s.log.Debug().Str("alert_id", id).Int("photos", len(alert.PhotoURLs)).Msg("photo added")
	return alert, nil
}

// RemovePhoto removes a photo URL from the evidence list. Removing a URL
// that is not present is a no-op, not an error.
func (s *AlertService) RemovePhoto(ctx context.Context, id, url string) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, u := range alert.PhotoURLs {
		if u == url {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Debug().Str("alert_id", id).Msg("photo not present, nothing removed")
		return alert, nil
	}

	alert.PhotoURLs = append(alert.PhotoURLs[:idx], alert.PhotoURLs[idx+1:]...)
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.invalidateFor(ctx, alert, alert.Status)
	s.log.Debug().Str("alert_id", id).Int("photos", len(alert.PhotoURLs)).Msg("photo removed")
	return alert, nil
}

// GetAll returns every alert, read through the cache.
func (s *AlertService) GetAll(ctx context.Context) ([]*domain.Alert, error) {
	return s.cachedList(ctx, CacheKeyAllAlerts, func() ([]*domain.Alert, error) {
		return s.repo.FindAll(ctx)
	})
}

// GetByID returns a single alert, read through the cache.
func (s *AlertService) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	if alert, ok := s.cache.GetAlert(ctx, id); ok {
		metrics.AlertCacheTotal.WithLabelValues("hit").Inc()
		return alert, nil
	}
	metrics.AlertCacheTotal.WithLabelValues("miss").Inc()

	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetAlert(ctx, alert)
	return alert, nil
}

// GetByStatus returns the alerts currently in the given status.
func (s *AlertService) GetByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	return s.cachedList(ctx, CacheKeyAlertsByStatus(status), func() ([]*domain.Alert, error) {
		return s.repo.FindByStatus(ctx, status)
	})
}

// GetBySensor returns the alerts reported by a sensor.
func (s *AlertService) GetBySensor(ctx context.Context, sensorID string) ([]*domain.Alert, error) {
	return s.cachedList(ctx, CacheKeyAlertsBySensor(sensorID), func() ([]*domain.Alert, error) {
		return s.repo.FindBySensor(ctx, sensorID)
	})
}

func (s *AlertService) cachedList(ctx context.Context, key string, load func() ([]*domain.Alert, error)) ([]*domain.Alert, error) {
	if alerts, ok := s.cache.GetAlerts(ctx, key); ok {
		metrics.AlertCacheTotal.WithLabelValues("hit").Inc()
		return alerts, nil
	}
	metrics.AlertCacheTotal.WithLabelValues("miss").Inc()

	alerts, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.SetAlerts(ctx, key, alerts)
	return alerts, nil
}

// invalidateFor drops every cache entry a mutation of this alert could have
// gone stale: the entity itself, the all-alerts aggregate, the by-status
// aggregates for the old and current status, and the by-sensor aggregate.
func (s *AlertService) invalidateFor(ctx context.Context, alert *domain.Alert, oldStatus domain.AlertStatus) {
	s.cache.InvalidateAlert(ctx, alert.ID)
	s.cache.InvalidateLists(ctx,
		CacheKeyAllAlerts,
		CacheKeyAlertsByStatus(oldStatus),
		CacheKeyAlertsByStatus(alert.Status),
		CacheKeyAlertsBySensor(alert.SensorID),
	)
}

func (s *AlertService) resolveAssignee(ctx context.Context, userID string) (*domain.Assignee, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Assignee{UserID: user.ID, Username: user.Username}, nil
}
