package repository

import (
	"context"

	"alcyxob/run-plan/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound   = RepositoryError("not found")
	ErrSaveFailed = RepositoryError("save failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository stores the plan document opaquely, keyed by plan ID.
// Get returns ErrNotFound when no document exists yet.
type PlanRepository interface {
	Get(ctx context.Context, id string) (*domain.Plan, error)
	Save(ctx context.Context, plan *domain.Plan) error
}
