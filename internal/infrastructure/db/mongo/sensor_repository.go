package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/firesafety/incident-system/internal/core/domain"
)

const collectionSensors = "sensors"

// SensorRepository persists sensors.
type SensorRepository struct {
	col *mongo.Collection
}

func NewSensorRepository(db *mongo.Database) *SensorRepository {
	return &SensorRepository{col: db.Collection(collectionSensors)}
}

type sensorDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Model      string             `bson:"model"`
	Location   string             `bson:"location"`
	AssignedTo *assigneeDoc       `bson:"assigned_to,omitempty"`
}

func (r *SensorRepository) Create(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, sensorToDoc(s))
	if err != nil {
		return nil, fmt.Errorf("insert sensor: %w", err)
	}

	created := *s
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *SensorRepository) FindByID(ctx context.Context, id string) (*domain.Sensor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSensorNotFound
	}

	var doc sensorDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSensorNotFound
		}
		return nil, fmt.Errorf("find sensor: %w", err)
	}
	return docToSensor(doc), nil
}

func (r *SensorRepository) FindAll(ctx context.Context) ([]*domain.Sensor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	defer cur.Close(ctx)

	sensors := []*domain.Sensor{}
	for cur.Next(ctx) {
		var doc sensorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode sensor: %w", err)
		}
		sensors = append(sensors, docToSensor(doc))
	}
	return sensors, cur.Err()
}

func (r *SensorRepository) Update(ctx context.Context, s *domain.Sensor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return domain.ErrSensorNotFound
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, sensorToDoc(s))
	if err != nil {
		return fmt.Errorf("update sensor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSensorNotFound
	}
	return nil
}

func (r *SensorRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSensorNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete sensor: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSensorNotFound
	}
	return nil
}

func sensorToDoc(s *domain.Sensor) sensorDoc {
	doc := sensorDoc{Model: s.Model, Location: s.Location}
	if s.AssignedTo != nil {
		doc.AssignedTo = &assigneeDoc{UserID: s.AssignedTo.UserID, Username: s.AssignedTo.Username}
	}
	return doc
}

func docToSensor(doc sensorDoc) *domain.Sensor {
	s := &domain.Sensor{
		ID:       doc.ID.Hex(),
		Model:    doc.Model,
		Location: doc.Location,
	}
	if doc.AssignedTo != nil {
		s.AssignedTo = &domain.Assignee{UserID: doc.AssignedTo.UserID, Username: doc.AssignedTo.Username}
	}
	return s
}
