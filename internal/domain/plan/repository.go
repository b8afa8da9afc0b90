package plan

import (
	"context"
)

// Repository defines the interface for plan catalog persistence.
// The catalog is read-only to the billing core; Create exists for seeding
// and administrative tooling.
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	GetByLookupKey(ctx context.Context, lookupKey string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
