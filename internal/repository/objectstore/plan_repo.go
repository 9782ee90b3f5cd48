// Package objectstore keeps the plan document as a JSON blob in a bucket.
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/repository"
	"alcyxob/run-plan/internal/storage"
)

const (
	planPrefix      = "plans"
	jsonContentType = "application/json"
)

type blobPlanRepository struct {
	blobs storage.BlobStorage
}

// NewPlanRepository stores plans under plans/<id>.json.
func NewPlanRepository(blobs storage.BlobStorage) repository.PlanRepository {
	return &blobPlanRepository{blobs: blobs}
}

// PlanKey is the object key of a plan document.
func PlanKey(id string) string {
	return path.Join(planPrefix, id+".json")
}

func (r *blobPlanRepository) Get(ctx context.Context, id string) (*domain.Plan, error) {
	body, err := r.blobs.GetObject(ctx, PlanKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var plan domain.Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %q: %w", id, err)
	}
	if plan.ID == "" {
		plan.ID = id
	}
	return &plan, nil
}

func (r *blobPlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("%w: plan id is required", repository.ErrSaveFailed)
	}

	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	if err := r.blobs.PutObject(ctx, PlanKey(plan.ID), body, jsonContentType); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	return nil
}
