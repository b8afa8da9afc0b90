package subscription

import (
	"time"

	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

// Subscription is the single active billing record of a tenant. It is never
// hard-deleted: renewals mutate the period boundaries in place and cancelled
// records are kept with status cancelled.
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// PlanID is the identifier of the currently active plan
	PlanID string `db:"plan_id" json:"plan_id"`

	// SubscriptionStatus is the stored lifecycle status
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// Currency is the currency of the subscription in lowercase 3 digit ISO codes
	Currency string `db:"currency" json:"currency"`

	// CurrentPeriodStart is the start of the billing cycle being charged
	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`

	// CurrentPeriodEnd is the end of the billing cycle being charged
	CurrentPeriodEnd time.Time `db:"current_period_end" json:"current_period_end"`

	// SeatCount overrides the plan's seat floor on custom plans. Zero means
	// the plan default.
	SeatCount int `db:"seat_count" json:"seat_count"`

	// ScheduledPlanID, ScheduledSeatCount and ScheduledEffectiveDate describe
	// a deferred downgrade to be applied at the next cycle boundary.
	ScheduledPlanID        *string    `db:"scheduled_plan_id" json:"scheduled_plan_id"`
	ScheduledSeatCount     *int       `db:"scheduled_seat_count" json:"scheduled_seat_count"`
	ScheduledEffectiveDate *time.Time `db:"scheduled_effective_date" json:"scheduled_effective_date"`

	// CancelledAt is the date the subscription was cancelled
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at"`

	// Suspended marks an administrative suspension independent of cycle
	// expiry.
	Suspended bool `db:"suspended" json:"suspended"`

	// Version is a monotonically increasing counter used for optimistic
	// concurrency control on plan changes and renewals.
	Version int `db:"version" json:"version"`

	types.BaseModel
}

// Validate checks the stored record for structural corruption. A violation
// here is operator-facing, not caller-facing.
func (s *Subscription) Validate() error {
	if !s.CurrentPeriodEnd.After(s.CurrentPeriodStart) {
		return ierr.NewErrorf("cycle end %s is not after cycle start %s", s.CurrentPeriodEnd, s.CurrentPeriodStart).
			WithHint("Subscription billing cycle is malformed").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrInvalidCycle)
	}

	if s.ScheduledEffectiveDate != nil && s.ScheduledEffectiveDate.Before(s.CurrentPeriodEnd) {
		return ierr.NewErrorf("scheduled change effective date %s precedes cycle end %s", s.ScheduledEffectiveDate, s.CurrentPeriodEnd).
			WithHint("Subscription scheduled change is malformed").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrInvalidCycle)
	}

	return nil
}

// IsTrial reports whether the subscription is on its evaluation period.
func (s *Subscription) IsTrial() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusTrialing
}

// HasScheduledChange reports whether a deferred plan change is pending.
func (s *Subscription) HasScheduledChange() bool {
	return s.ScheduledPlanID != nil && s.ScheduledEffectiveDate != nil
}

// ScheduleChange records a deferred change to targetPlanID taking effect at
// the current cycle end. Seats carries the seat override for custom targets.
func (s *Subscription) ScheduleChange(targetPlanID string, seats int) {
	effective := s.CurrentPeriodEnd
	s.ScheduledPlanID = &targetPlanID
	s.ScheduledEffectiveDate = &effective
	if seats > 0 {
		s.ScheduledSeatCount = &seats
	} else {
		s.ScheduledSeatCount = nil
	}
}

// ClearScheduledChange removes any pending deferred change.
func (s *Subscription) ClearScheduledChange() {
	s.ScheduledPlanID = nil
	s.ScheduledSeatCount = nil
	s.ScheduledEffectiveDate = nil
}
