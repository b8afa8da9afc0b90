package types

import (
	ierr "github.com/inmoval/billing/internal/errors"
)

// SubscriptionStatus is the status of a subscription
// Infra note: this is the stored lifecycle status, not the derived billing
// state surfaced to clients (see BillingState).
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Validate() error {
	switch s {
	case SubscriptionStatusTrialing, SubscriptionStatusActive, SubscriptionStatusCancelled:
		return nil
	}
	return ierr.NewErrorf("invalid subscription status: %s", s).
		WithHint("Subscription status must be one of trialing, active or cancelled").
		Mark(ierr.ErrValidation)
}

func (s SubscriptionStatus) String() string {
	return string(s)
}
