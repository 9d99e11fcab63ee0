package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mioNacs/BLManagementSystem/internal/models"
)

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepo(db *mongo.Database, collection string) EventRepository {
	return &mongoEventRepo{col: db.Collection(collection)}
}

func (r *mongoEventRepo) Create(ctx context.Context, e *models.Event) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, e)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return nil
}

func (r *mongoEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error) {
	e.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":        e.Title,
		"description":  e.Description,
		"startingDate": e.StartingDate,
		"time":         e.Time,
		"location":     e.Location,
		"category":     e.Category,
		"status":       e.Status,
		"updated_at":   e.UpdatedAt,
	}}

	var updated models.Event
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
