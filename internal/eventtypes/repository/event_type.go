package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventtypeserrors "slotkeeper/internal/eventtypes/errors"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Event_types"
)

type EventTypeRepository interface {
	Create(ctx context.Context, eventType *model.EventType) error
	FindByID(ctx context.Context, id string) (*model.EventType, error)
	FindActiveBySlug(ctx context.Context, slug string) (*model.EventType, error)
	FindActive(ctx context.Context) ([]*model.EventType, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.EventType, error)
	Update(ctx context.Context, id string, eventType *model.EventType) error
	Deactivate(ctx context.Context, id string, at time.Time) error
}

type mongoEventTypeRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoEventTypeRepository(cfg *config.Config) EventTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventTypeRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEventTypeRepository) Create(ctx context.Context, eventType *model.EventType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, eventType)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return eventtypeserrors.ErrSlugTaken
		}
		return fmt.Errorf("failed to create event type: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		eventType.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEventTypeRepository) FindByID(ctx context.Context, id string) (*model.EventType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", eventtypeserrors.ErrInvalidID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoEventTypeRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.EventType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"slug": slug, "is_active": true})
}

func (r *mongoEventTypeRepository) findOne(ctx context.Context, filter bson.M) (*model.EventType, error) {
	var eventType model.EventType
	err := r.collection.FindOne(ctx, filter).Decode(&eventType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventtypeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event type: %w", err)
	}
	return &eventType, nil
}

func (r *mongoEventTypeRepository) FindActive(ctx context.Context) ([]*model.EventType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"is_active": true}, opts)
}

// FindByIDs returns the event types with the given ids, active or not.
// Malformed ids are skipped.
func (r *mongoEventTypeRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.EventType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return []*model.EventType{}, nil
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, options.Find())
}

func (r *mongoEventTypeRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.EventType, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find event types: %w", err)
	}
	defer cursor.Close(ctx)

	eventTypes := []*model.EventType{}
	if err = cursor.All(ctx, &eventTypes); err != nil {
		return nil, fmt.Errorf("failed to decode event types: %w", err)
	}
	return eventTypes, nil
}

func (r *mongoEventTypeRepository) Update(ctx context.Context, id string, eventType *model.EventType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventtypeserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        eventType.Name,
			"duration":    eventType.Duration,
			"slug":        eventType.Slug,
			"description": eventType.Description,
			"color":       eventType.Color,
			"is_active":   eventType.IsActive,
			"updated_at":  eventType.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return eventtypeserrors.ErrSlugTaken
		}
		return fmt.Errorf("failed to update event type: %w", err)
	}
	if result.MatchedCount == 0 {
		return eventtypeserrors.ErrNotFound
	}
	return nil
}

func (r *mongoEventTypeRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventtypeserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate event type: %w", err)
	}
	if result.MatchedCount == 0 {
		return eventtypeserrors.ErrNotFound
	}
	return nil
}
