package service

import (
	"context"
	"reflect"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

type stubAlertRepo struct {
	alerts map[string]*domain.Alert
	nextID int
}

func newStubAlertRepo() *stubAlertRepo {
	return &stubAlertRepo{alerts: make(map[string]*domain.Alert)}
}

func cloneAlert(a *domain.Alert) *domain.Alert {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PhotoURLs = append([]string(nil), a.PhotoURLs...)
	if a.AssignedTo != nil {
		assignee := *a.AssignedTo
		clone.AssignedTo = &assignee
	}
	return &clone
}

func (r *stubAlertRepo) Create(_ context.Context, a *domain.Alert) (*domain.Alert, error) {
	copy := cloneAlert(a)
	r.nextID++
	copy.ID = "a" + strconv.Itoa(r.nextID)
	r.alerts[copy.ID] = cloneAlert(copy)
	return copy, nil
}

func (r *stubAlertRepo) FindByID(_ context.Context, id string) (*domain.Alert, error) {
	a, ok := r.alerts[id]
	if !ok {
		return nil, domain.ErrAlertNotFound
	}
	return cloneAlert(a), nil
}

func (r *stubAlertRepo) FindAll(_ context.Context) ([]*domain.Alert, error) {
	out := make([]*domain.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, cloneAlert(a))
	}
	return out, nil
}

func (r *stubAlertRepo) FindByStatus(_ context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	out := []*domain.Alert{}
	for _, a := range r.alerts {
		if a.Status == status {
			out = append(out, cloneAlert(a))
		}
	}
	return out, nil
}

func (r *stubAlertRepo) FindBySensor(_ context.Context, sensorID string) ([]*domain.Alert, error) {
	out := []*domain.Alert{}
	for _, a := range r.alerts {
		if a.SensorID == sensorID {
			out = append(out, cloneAlert(a))
		}
	}
	return out, nil
}

func (r *stubAlertRepo) Update(_ context.Context, a *domain.Alert) error {
	if _, ok := r.alerts[a.ID]; !ok {
		return domain.ErrAlertNotFound
	}
	r.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (r *stubAlertRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.alerts[id]; !ok {
		return domain.ErrAlertNotFound
	}
	delete(r.alerts, id)
	return nil
}

// recordingCache tracks invalidations; reads always miss so tests exercise
// the repository path unless a hit is planted explicitly.
type recordingCache struct {
	invalidatedIDs  []string
	invalidatedKeys []string
	plantedLists    map[string][]*domain.Alert
}

func newRecordingCache() *recordingCache {
	return &recordingCache{plantedLists: make(map[string][]*domain.Alert)}
}

func (c *recordingCache) GetAlert(context.Context, string) (*domain.Alert, bool) { return nil, false }
func (c *recordingCache) SetAlert(context.Context, *domain.Alert)                {}

func (c *recordingCache) GetAlerts(_ context.Context, key string) ([]*domain.Alert, bool) {
	alerts, ok := c.plantedLists[key]
	return alerts, ok
}

func (c *recordingCache) SetAlerts(context.Context, string, []*domain.Alert) {}

func (c *recordingCache) InvalidateAlert(_ context.Context, id string) {
	c.invalidatedIDs = append(c.invalidatedIDs, id)
}

func (c *recordingCache) InvalidateLists(_ context.Context, keys ...string) {
	c.invalidatedKeys = append(c.invalidatedKeys, keys...)
}

func (c *recordingCache) sawKey(key string) bool {
	for _, k := range c.invalidatedKeys {
		if k == key {
			return true
		}
	}
	return false
}

func newTestAlertService(t *testing.T) (*AlertService, *stubAlertRepo, *stubUserRepo, *recordingCache, *recordingNotifier) {
	t.Helper()
	repo := newStubAlertRepo()
	users := newStubUserRepo()
	cache := newRecordingCache()
	notifier := &recordingNotifier{}
	svc := NewAlertService(repo, users, cache, notifier, zerolog.Nop())
	return svc, repo, users, cache, notifier
}

func TestAlertService_Create_Defaults(t *testing.T) {
	svc, _, _, _, notifier := newTestAlertService(t)

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID:    "s1",
		Type:        domain.EventAccident,
		Description: "smoke in hallway",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if alert.Status != domain.StatusNew {
		t.Fatalf("expected default status NEW, got %s", alert.Status)
	}
	if alert.Timestamp.IsZero() {
		t.Fatalf("expected a creation timestamp")
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected a creation notification, got %d", len(notifier.messages))
	}
}

func TestAlertService_Create_UnknownAssignee(t *testing.T) {
	svc, _, _, _, _ := newTestAlertService(t)

	_, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID:       "s1",
		Type:           domain.EventButton,
		AssignedUserID: "missing",
	})
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAlertService_ChangeStatus_Unconditional(t *testing.T) {
	svc, _, _, _, _ := newTestAlertService(t)

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID: "s1", Type: domain.EventAccident, Status: domain.StatusResolved,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Backward move: RESOLVED → NEW is allowed.
	changed, err := svc.ChangeStatus(context.Background(), alert.ID, domain.StatusNew)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if changed.Status != domain.StatusNew {
		t.Fatalf("expected status NEW, got %s", changed.Status)
	}

	got, err := svc.GetByID(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Status != domain.StatusNew {
		t.Fatalf("read after change: expected NEW, got %s", got.Status)
	}
}

func TestAlertService_ChangeStatus_InvalidatesBothStatusKeys(t *testing.T) {
	svc, _, _, cache, _ := newTestAlertService(t)

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID: "s1", Type: domain.EventAccident,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	cache.invalidatedKeys = nil

	if _, err := svc.ChangeStatus(context.Background(), alert.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}

	for _, key := range []string{
		CacheKeyAllAlerts,
		CacheKeyAlertsByStatus(domain.StatusNew),
		CacheKeyAlertsByStatus(domain.StatusInProgress),
		CacheKeyAlertsBySensor("s1"),
	} {
		if !cache.sawKey(key) {
			t.Fatalf("expected invalidation of %s, saw %v", key, cache.invalidatedKeys)
		}
	}
}

func TestAlertService_PhotoRoundTrip(t *testing.T) {
	svc, _, _, _, _ := newTestAlertService(t)

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID: "s1", Type: domain.EventHardBraking, PhotoURLs: []string{"http://p/1"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	before := append([]string(nil), alert.PhotoURLs...)

	added, err := svc.AddPhoto(context.Background(), alert.ID, "http://p/2")
	if err != nil {
		t.Fatalf("AddPhoto returned error: %v", err)
	}
	if len(added.PhotoURLs) != 2 {
		t.Fatalf("expected 2 photos, got %v", added.PhotoURLs)
	}

	removed, err := svc.RemovePhoto(context.Background(), alert.ID, "http://p/2")
	if err != nil {
		t.Fatalf("RemovePhoto returned error: %v", err)
	}
	if !reflect.DeepEqual(removed.PhotoURLs, before) {
		t.Fatalf("add-then-remove should restore the list: %v vs %v", removed.PhotoURLs, before)
	}

	// Removing an absent URL is a no-op.
	same, err := svc.RemovePhoto(context.Background(), alert.ID, "http://p/ghost")
	if err != nil {
		t.Fatalf("RemovePhoto of absent URL returned error: %v", err)
	}
	if !reflect.DeepEqual(same.PhotoURLs, before) {
		t.Fatalf("no-op removal changed the list: %v", same.PhotoURLs)
	}
}

func TestAlertService_Update_FullOverwrite(t *testing.T) {
	svc, _, users, _, _ := newTestAlertService(t)
	operator, err := users.Create(context.Background(), &domain.User{Username: "op"})
	if err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID: "s1", Type: domain.EventAccident, Description: "old",
		AssignedUserID: operator.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(context.Background(), alert.ID, ports.AlertInput{
		SensorID:    "s1",
		Type:        domain.EventButton,
		Description: "new",
		Status:      domain.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Type != domain.EventButton || updated.Description != "new" {
		t.Fatalf("fields not overwritten: %+v", updated)
	}
	if updated.AssignedTo != nil {
		t.Fatalf("empty userId should clear the assignee")
	}
}

func TestAlertService_GetByStatus_CacheHitSkipsRepo(t *testing.T) {
	svc, _, _, cache, _ := newTestAlertService(t)

	planted := []*domain.Alert{{ID: "cached", Status: domain.StatusNew}}
	cache.plantedLists[CacheKeyAlertsByStatus(domain.StatusNew)] = planted

	got, err := svc.GetByStatus(context.Background(), domain.StatusNew)
	if err != nil {
		t.Fatalf("GetByStatus returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cached" {
		t.Fatalf("expected the planted cache entry, got %+v", got)
	}
}

func TestAlertService_Lifecycle(t *testing.T) {
	svc, _, users, _, _ := newTestAlertService(t)
	operator, err := users.Create(context.Background(), &domain.User{Username: "firefighter"})
	if err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	alert, err := svc.Create(context.Background(), ports.AlertInput{
		SensorID: "hall-3", Type: domain.EventAccident, Description: "smoke detected",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	assigned, err := svc.Assign(context.Background(), alert.ID, operator.ID)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if assigned.AssignedTo == nil || assigned.AssignedTo.Username != "firefighter" {
		t.Fatalf("unexpected assignee: %+v", assigned.AssignedTo)
	}

	if _, err := svc.ChangeStatus(context.Background(), alert.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	resolved, err := svc.ChangeStatus(context.Background(), alert.ID, domain.StatusResolved)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if resolved.Status != domain.StatusResolved {
		t.Fatalf("expected RESOLVED, got %s", resolved.Status)
	}

	bySensor, err := svc.GetBySensor(context.Background(), "hall-3")
	if err != nil {
		t.Fatalf("GetBySensor returned error: %v", err)
	}
	if len(bySensor) != 1 {
		t.Fatalf("expected 1 alert for sensor, got %d", len(bySensor))
	}

	if err := svc.Delete(context.Background(), alert.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), alert.ID); err != domain.ErrAlertNotFound {
		t.Fatalf("expected ErrAlertNotFound after delete, got %v", err)
	}
}
