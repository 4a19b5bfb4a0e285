package repository

import (
	"context"
	"errors"
	"fmt"

	availabilityerrors "slotkeeper/internal/availability/errors"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Availability"
)

type AvailabilityRepository interface {
	Get(ctx context.Context) (*model.Availability, error)
	Insert(ctx context.Context, availability *model.Availability) error
	// Replace stores availability only if the stored version still equals
	// expectedVersion.
	Replace(ctx context.Context, availability *model.Availability, expectedVersion int64) error
}

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAvailabilityRepository) Get(ctx context.Context) (*model.Availability, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var availability model.Availability
	err := r.collection.FindOne(ctx, bson.M{"_id": model.AvailabilityID}).Decode(&availability)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}

	return &availability, nil
}

func (r *mongoAvailabilityRepository) Insert(ctx context.Context, availability *model.Availability) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	availability.ID = model.AvailabilityID
	if _, err := r.collection.InsertOne(ctx, availability); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availabilityerrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert availability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepository) Replace(ctx context.Context, availability *model.Availability, expectedVersion int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	availability.ID = model.AvailabilityID
	filter := bson.M{"_id": model.AvailabilityID, "version": expectedVersion}

	result, err := r.collection.ReplaceOne(ctx, filter, availability)
	if err != nil {
		return fmt.Errorf("failed to replace availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return availabilityerrors.ErrVersionConflict
	}
	return nil
}
