package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// planDocument is the stored shape: the plan itself plus bookkeeping.
type planDocument struct {
	domain.Plan `bson:",inline"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// mongoPlanRepository implements repository.PlanRepository using MongoDB.
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a plan repository on the given database.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// EnsurePlanIndexes creates the index used to list plans by recency.
func EnsurePlanIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(planCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: -1}},
		Options: options.Index().SetName("updatedAt_desc"),
	})
	return err
}

// Get retrieves the plan document by its ID.
func (r *mongoPlanRepository) Get(ctx context.Context, id string) (*domain.Plan, error) {
	var doc planDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Plan, nil
}

// Save replaces the whole document, inserting it on first save.
func (r *mongoPlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("%w: plan id is required", repository.ErrSaveFailed)
	}

	doc := planDocument{Plan: *plan, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": plan.ID}, doc, opts); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	return nil
}
