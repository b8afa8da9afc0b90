package proration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

// Advisory notes carried on quotes for the confirmation UI.
const (
	NoteDowngradeDeferred  = "Current plan remains active until the end of the billing cycle"
	NoteRenewalRequired    = "Billing cycle has already ended; renew the subscription instead of changing plans"
	NoteSeatChangeDeferred = "Seat change takes effect at the end of the billing cycle"
)

// minorUnitPlaces is the currency minor-unit precision amounts are rounded
// to. All supported currencies have exponent 2.
const minorUnitPlaces = 2

// Calculator quotes the monetary effect of moving a subscription to a
// candidate plan at a given point in its billing cycle.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (*Quote, error)
}

// NewCalculator returns the day-based calculator used in production.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator prorates on whole calendar days, matching how cycle
// boundaries are stored.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params Params) (*Quote, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	sub := params.Subscription
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	totalDays := daysBetween(sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if totalDays <= 0 {
		return nil, ierr.NewErrorf("cycle has zero or negative length (%v to %v)", sub.CurrentPeriodStart, sub.CurrentPeriodEnd).
			WithHint("Subscription billing cycle is malformed").
			Mark(ierr.ErrInvalidCycle)
	}

	remainingDays := daysBetween(params.Now, sub.CurrentPeriodEnd)
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}

	currentNet, err := params.CurrentPlan.EffectiveNetPrice(sub.SeatCount)
	if err != nil {
		return nil, err
	}
	candidateNet, err := params.CandidatePlan.EffectiveNetPrice(params.CandidateSeatCount)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		CurrentPlanID:   params.CurrentPlan.ID,
		CandidatePlanID: params.CandidatePlan.ID,
		Currency:        params.CandidatePlan.Currency,
		CurrentNet:      currentNet,
		CandidateNet:    candidateNet,
		DaysInCycle:     totalDays,
		DaysElapsed:     totalDays - remainingDays,
		DaysRemaining:   remainingDays,
		DeltaNet:        decimal.Zero,
		Tax:             decimal.Zero,
		Total:           decimal.Zero,
		SeatCount:       params.CandidateSeatCount,
	}

	switch {
	case candidateNet.GreaterThan(currentNet):
		quote.ChangeType = types.PlanChangeTypeUpgrade
		c.fillUpgradeAmounts(quote, params, currentNet, candidateNet, remainingDays, totalDays)

	case candidateNet.LessThan(currentNet):
		quote.ChangeType = types.PlanChangeTypeDowngrade
		effective := sub.CurrentPeriodEnd
		quote.EffectiveDate = &effective
		quote.Note = NoteDowngradeDeferred

	default:
		// Equal effective prices. A seat adjustment on the same custom plan
		// is still a real change and is deferred like a downgrade; anything
		// else is a no-op.
		if params.CurrentPlan.ID == params.CandidatePlan.ID && seatCountChanged(params) {
			quote.ChangeType = types.PlanChangeTypeDowngrade
			effective := sub.CurrentPeriodEnd
			quote.EffectiveDate = &effective
			quote.Note = NoteSeatChangeDeferred
		} else {
			quote.ChangeType = types.PlanChangeTypeNoChange
		}
	}

	return quote, nil
}

// fillUpgradeAmounts computes the prorated amount due now for an upgrade:
// the net price difference scaled by the remaining fraction of the cycle,
// plus tax.
func (c *dayBasedCalculator) fillUpgradeAmounts(
	quote *Quote,
	params Params,
	currentNet, candidateNet decimal.Decimal,
	remainingDays, totalDays int,
) {
	if remainingDays == 0 {
		// Nothing left of the cycle to charge for. Signal the caller to run
		// a renewal instead of silently succeeding with a free upgrade.
		quote.Note = NoteRenewalRequired
		return
	}

	fraction := decimal.NewFromInt(int64(remainingDays)).Div(decimal.NewFromInt(int64(totalDays)))

	deltaNet := candidateNet.Sub(currentNet).Mul(fraction).Round(minorUnitPlaces)
	tax := deltaNet.Mul(params.TaxRate).Round(minorUnitPlaces)

	quote.DeltaNet = deltaNet
	quote.Tax = tax
	quote.Total = deltaNet.Add(tax)
}

// seatCountChanged reports whether the candidate seat count differs from the
// subscription's effective one, treating zero as the plan's floor.
func seatCountChanged(params Params) bool {
	current := params.Subscription.SeatCount
	if current == 0 {
		current = params.CurrentPlan.SeatFloor
	}
	candidate := params.CandidateSeatCount
	if candidate == 0 {
		candidate = params.CandidatePlan.SeatFloor
	}
	return current != candidate
}

// daysBetween counts whole calendar days from start to end in UTC. Negative
// when end precedes start's day.
func daysBetween(start, end time.Time) int {
	start = start.UTC()
	end = end.UTC()
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(endDay.Sub(startDay).Hours() / 24)
}

// validateParams checks if essential parameters are provided.
func validateParams(params Params) error {
	if params.Subscription == nil {
		return ierr.NewError("subscription is required").
			WithHint("No active subscription found for tenant").
			Mark(ierr.ErrValidation)
	}
	if params.CurrentPlan == nil || params.CandidatePlan == nil {
		return ierr.NewError("both current and candidate plans are required").
			WithHint("Plan could not be resolved").
			Mark(ierr.ErrValidation)
	}
	if params.Now.IsZero() {
		return ierr.NewError("quote timestamp is required").
			Mark(ierr.ErrValidation)
	}
	if params.TaxRate.IsNegative() {
		return ierr.NewErrorf("tax rate cannot be negative: %s", params.TaxRate).
			Mark(ierr.ErrValidation)
	}
	return nil
}
