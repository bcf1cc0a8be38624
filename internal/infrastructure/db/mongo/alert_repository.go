package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/firesafety/incident-system/internal/core/domain"
)

const collectionAlerts = "alerts"

// AlertRepository persists alerts.
type AlertRepository struct {
	col *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{col: db.Collection(collectionAlerts)}
}

type assigneeDoc struct {
	UserID   string `bson:"user_id"`
	Username string `bson:"username"`
}

type alertDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SensorID    string             `bson:"sensor_id"`
	Type        string             `bson:"type"`
	Timestamp   time.Time          `bson:"timestamp"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	PhotoURLs   []string           `bson:"photo_urls"`
	AssignedTo  *assigneeDoc       `bson:"assigned_to,omitempty"`
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) (*domain.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, alertToDoc(a))
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}

	created := *a
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAlertNotFound
	}

	var doc alertDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, fmt.Errorf("find alert: %w", err)
	}
	return docToAlert(doc), nil
}

func (r *AlertRepository) FindAll(ctx context.Context) ([]*domain.Alert, error) {
	return r.findFilter(ctx, bson.M{})
}

func (r *AlertRepository) FindByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	return r.findFilter(ctx, bson.M{"status": string(status)})
}

func (r *AlertRepository) FindBySensor(ctx context.Context, sensorID string) ([]*domain.Alert, error) {
	return r.findFilter(ctx, bson.M{"sensor_id": sensorID})
}

func (r *AlertRepository) Update(ctx context.Context, a *domain.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return domain.ErrAlertNotFound
	}

	doc := alertToDoc(a)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAlertNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// EnsureIndexes creates indexes for the status and sensor query paths.
func (r *AlertRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sensor_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AlertRepository) findFilter(ctx context.Context, filter bson.M) ([]*domain.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer cur.Close(ctx)

	alerts := []*domain.Alert{}
	for cur.Next(ctx) {
		var doc alertDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode alert: %w", err)
		}
		alerts = append(alerts, docToAlert(doc))
	}
	return alerts, cur.Err()
}

func alertToDoc(a *domain.Alert) alertDoc {
	doc := alertDoc{
		SensorID:    a.SensorID,
		Type:        string(a.Type),
		Timestamp:   a.Timestamp.UTC(),
		Description: a.Description,
		Status:      string(a.Status),
		PhotoURLs:   a.PhotoURLs,
	}
	if a.AssignedTo != nil {
		doc.AssignedTo = &assigneeDoc{UserID: a.AssignedTo.UserID, Username: a.AssignedTo.Username}
	}
	return doc
}

func docToAlert(doc alertDoc) *domain.Alert {
	a := &domain.Alert{
		ID:          doc.ID.Hex(),
		SensorID:    doc.SensorID,
		Type:        domain.EventType(doc.Type),
		Timestamp:   doc.Timestamp.UTC(),
		Description: doc.Description,
		Status:      domain.AlertStatus(doc.Status),
		PhotoURLs:   doc.PhotoURLs,
	}
	if doc.AssignedTo != nil {
		a.AssignedTo = &domain.Assignee{UserID: doc.AssignedTo.UserID, Username: doc.AssignedTo.Username}
	}
	return a
}
