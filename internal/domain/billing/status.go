package billing

import (
	"time"

	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/subscription"
	"github.com/inmoval/billing/internal/types"
)

// Config carries the projection knobs. GraceHours is the fixed window after
// nominal expiry during which a paid plan keeps working before suspension.
type Config struct {
	GraceHours int
}

// Status is the user-facing projection over a subscription used for banners
// and feature gating. Derived fresh on every query and never persisted.
type Status struct {
	HasPlan bool               `json:"has_plan"`
	State   types.BillingState `json:"state"`

	PlanID   string `json:"plan_id,omitempty"`
	PlanName string `json:"plan_name,omitempty"`

	Trial           bool `json:"trial"`
	TrackerIncluded bool `json:"tracker_included"`
	Suspended       bool `json:"suspended"`
	Expired         bool `json:"expired"`
	InGrace         bool `json:"in_grace"`

	// DaysRemaining is the ceiling of the time left in the cycle in days.
	// Negative when the cycle has ended.
	DaysRemaining int `json:"days_remaining"`

	// GraceHoursRemaining is how many hours of the grace window are left,
	// clamped at zero. Only meaningful for paid plans past expiry.
	GraceHoursRemaining int `json:"grace_hours_remaining"`
}

// Project derives the billing status of a subscription at the given instant.
// Pure: no clock reads, no side effects. States are mutually exclusive and
// evaluated in priority order.
func Project(sub *subscription.Subscription, p *plan.Plan, now time.Time, cfg Config) Status {
	if sub == nil || sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
		return Status{HasPlan: false, State: types.BillingStateNone}
	}

	status := Status{
		HasPlan:       true,
		DaysRemaining: ceilDays(sub.CurrentPeriodEnd.Sub(now)),
	}
	if p != nil {
		status.PlanID = p.ID
		status.PlanName = p.Name
		status.TrackerIncluded = p.TrackerIncluded
	}

	if sub.Suspended {
		status.State = types.BillingStateSuspended
		status.Suspended = true
		status.Expired = status.DaysRemaining < 0
		return status
	}

	if sub.IsTrial() {
		status.Trial = true
		if status.DaysRemaining >= 0 {
			status.State = types.BillingStateTrial
		} else {
			// Trials have no grace window: expiry is binary.
			status.State = types.BillingStateExpired
			status.Expired = true
		}
		return status
	}

	if status.DaysRemaining >= 0 {
		status.State = types.BillingStateActive
		return status
	}

	status.Expired = true
	graceHoursLeft := cfg.GraceHours + status.DaysRemaining*24
	if graceHoursLeft < 0 {
		graceHoursLeft = 0
	}

	graceDays := cfg.GraceHours / 24
	if status.DaysRemaining >= -graceDays {
		status.State = types.BillingStateGrace
		status.InGrace = true
		status.GraceHoursRemaining = graceHoursLeft
		return status
	}

	status.State = types.BillingStateSuspended
	status.Suspended = true
	return status
}

// ceilDays converts a duration to whole days, rounding toward the future.
func ceilDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
