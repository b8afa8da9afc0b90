package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetActive returns the single active (or trialing) subscription of the
	// tenant in ctx. At most one such record exists per tenant.
	GetActive(ctx context.Context) (*Subscription, error)

	// Save persists the subscription iff its stored version still equals
	// expectedVersion, bumping the version on success. A mismatch returns an
	// error marked ierr.ErrVersionConflict.
	Save(ctx context.Context, subscription *Subscription, expectedVersion int) error

	// ListDueForRenewal returns subscriptions across all tenants whose
	// current period has ended at or before now.
	ListDueForRenewal(ctx context.Context, now time.Time) ([]*Subscription, error)
}
