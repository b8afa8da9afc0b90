package types

import (
	ierr "github.com/inmoval/billing/internal/errors"
)

// PlanChangeType classifies a previewed plan change relative to the plan the
// tenant is currently on.
type PlanChangeType string

const (
	PlanChangeTypeUpgrade   PlanChangeType = "upgrade"
	PlanChangeTypeDowngrade PlanChangeType = "downgrade"
	PlanChangeTypeNoChange  PlanChangeType = "no_change"
)

func (t PlanChangeType) Validate() error {
	switch t {
	case PlanChangeTypeUpgrade, PlanChangeTypeDowngrade, PlanChangeTypeNoChange:
		return nil
	}
	return ierr.NewErrorf("invalid plan change type: %s", t).
		WithHint("Plan change type must be one of upgrade, downgrade or no_change").
		Mark(ierr.ErrValidation)
}

// ChangeResultStatus is the outcome of a confirmed plan change.
type ChangeResultStatus string

const (
	// ChangeResultStatusPaymentRequired means the plan was switched for the
	// remainder of the cycle and the returned amount must be captured by the
	// payment layer.
	ChangeResultStatusPaymentRequired ChangeResultStatus = "payment_required"
	// ChangeResultStatusScheduled means the change was deferred to the next
	// cycle boundary with no immediate charge.
	ChangeResultStatusScheduled ChangeResultStatus = "scheduled"
	// ChangeResultStatusNoChange means the request was an idempotent no-op.
	ChangeResultStatusNoChange ChangeResultStatus = "no_change"
)

// BillingState is the derived, user-facing state of a tenant's subscription.
type BillingState string

const (
	BillingStateNone      BillingState = "none"
	BillingStateTrial     BillingState = "trial"
	BillingStateActive    BillingState = "active"
	BillingStateGrace     BillingState = "grace"
	BillingStateSuspended BillingState = "suspended"
	BillingStateExpired   BillingState = "expired"
)
