package proration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/subscription"
	"github.com/inmoval/billing/internal/types"
)

// Params holds all necessary input for quoting a plan change.
type Params struct {
	// Subscription context
	Subscription *subscription.Subscription

	// CurrentPlan is the plan the subscription is on right now
	CurrentPlan *plan.Plan

	// CandidatePlan is the plan being previewed
	CandidatePlan *plan.Plan

	// CandidateSeatCount overrides the candidate plan's seat floor on custom
	// plans. Zero means the plan default.
	CandidateSeatCount int

	// Now is the point in the billing cycle the quote is computed at
	Now time.Time

	// TaxRate is the fractional tax rate applied on upgrade charges, e.g.
	// 0.21 for 21%
	TaxRate decimal.Decimal
}

// Quote is the output of a proration calculation. It is ephemeral: consumed
// by the confirmation step and never persisted.
type Quote struct {
	ChangeType      types.PlanChangeType `json:"change_type"`
	CurrentPlanID   string               `json:"current_plan_id"`
	CandidatePlanID string               `json:"candidate_plan_id"`
	Currency        string               `json:"currency"`

	// CurrentNet and CandidateNet are the seat-adjusted full-cycle net prices
	CurrentNet   decimal.Decimal `json:"current_net"`
	CandidateNet decimal.Decimal `json:"candidate_net"`

	// Cycle position at quote time
	DaysInCycle   int `json:"days_in_cycle"`
	DaysElapsed   int `json:"days_elapsed"`
	DaysRemaining int `json:"days_remaining"`

	// DeltaNet, Tax and Total are the amounts due now. Zero for downgrades
	// and no-change quotes.
	DeltaNet decimal.Decimal `json:"delta_net"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`

	// EffectiveDate is set for deferred (downgrade-style) changes
	EffectiveDate *time.Time `json:"effective_date,omitempty"`

	// Note is an advisory message for the confirmation UI
	Note string `json:"note,omitempty"`

	// SeatCount is the candidate seat count the quote was computed for
	SeatCount int `json:"seat_count,omitempty"`
}

// ZeroAmounts reports whether the quote carries no immediate charge.
func (q *Quote) ZeroAmounts() bool {
	return q.Total.IsZero()
}
