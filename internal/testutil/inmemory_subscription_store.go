package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository with the same
// compare-and-swap semantics as the postgres repository.
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

var _ subscription.Repository = (*InMemorySubscriptionStore)(nil)

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return ierr.NewErrorf("subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subscriptions[id]
	if !exists || sub.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetActive(ctx context.Context) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := types.GetTenantID(ctx)
	var latest *subscription.Subscription
	for _, sub := range s.subscriptions {
		if sub.TenantID != tenantID || !isActiveStatus(sub.SubscriptionStatus) {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, ierr.NewError("no active subscription for tenant").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(latest), nil
}

func (s *InMemorySubscriptionStore) Save(ctx context.Context, sub *subscription.Subscription, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subscriptions[sub.ID]
	if !exists || stored.TenantID != types.GetTenantID(ctx) {
		return ierr.NewErrorf("subscription %s not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}

	if stored.Version != expectedVersion {
		return ierr.NewErrorf("subscription %s version mismatch: expected %d, stored %d",
			sub.ID, expectedVersion, stored.Version).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version = expectedVersion + 1
	sub.UpdatedAt = time.Now().UTC()
	s.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (s *InMemorySubscriptionStore) ListDueForRenewal(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*subscription.Subscription
	for _, sub := range s.subscriptions {
		if sub.SubscriptionStatus == types.SubscriptionStatusActive && !sub.CurrentPeriodEnd.After(now) {
			due = append(due, copySubscription(sub))
		}
	}
	return due, nil
}

// Clear removes all subscriptions from the store
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}

func isActiveStatus(status types.SubscriptionStatus) bool {
	return status == types.SubscriptionStatusActive || status == types.SubscriptionStatusTrialing
}

// copySubscription guards the store against callers mutating returned values.
func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	c := *sub
	if sub.ScheduledPlanID != nil {
		v := *sub.ScheduledPlanID
		c.ScheduledPlanID = &v
	}
	if sub.ScheduledSeatCount != nil {
		v := *sub.ScheduledSeatCount
		c.ScheduledSeatCount = &v
	}
	if sub.ScheduledEffectiveDate != nil {
		v := *sub.ScheduledEffectiveDate
		c.ScheduledEffectiveDate = &v
	}
	if sub.CancelledAt != nil {
		v := *sub.CancelledAt
		c.CancelledAt = &v
	}
	return &c
}
