package proration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoval/billing/internal/domain/plan"
	"github.com/inmoval/billing/internal/domain/subscription"
	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

var (
	cycleStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cycleEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	taxRate    = decimal.RequireFromString("0.21")
)

func standardPlan(id string, netPrice string) *plan.Plan {
	return &plan.Plan{
		ID:              id,
		Name:            id,
		Currency:        "eur",
		NetMonthlyPrice: decimal.RequireFromString(netPrice),
		CycleDays:       30,
	}
}

func customPlan(id string, basePrice string, floor, ceiling int, perSeat string) *plan.Plan {
	p := standardPlan(id, basePrice)
	p.Custom = true
	p.SeatFloor = floor
	p.SeatCeiling = ceiling
	p.PerSeatPrice = decimal.RequireFromString(perSeat)
	return p
}

func activeSubscription(planID string) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                 "subs_test",
		PlanID:             planID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		Currency:           "eur",
		CurrentPeriodStart: cycleStart,
		CurrentPeriodEnd:   cycleEnd,
		Version:            1,
	}
}

func TestCalculator_Calculate(t *testing.T) {
	inicial := standardPlan("plan_inicial", "10000")
	profesional := standardPlan("plan_profesional", "18000")
	personalizado := customPlan("plan_personalizado", "25000", 5, 20, "1500")

	tests := []struct {
		name          string
		params        Params
		check         func(t *testing.T, quote *Quote)
		expectedError error
	}{
		{
			name: "upgrade_mid_cycle",
			params: Params{
				Subscription:  activeSubscription("plan_inicial"),
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 3, 21, 10, 30, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeUpgrade, quote.ChangeType)
				assert.Equal(t, 30, quote.DaysInCycle)
				assert.Equal(t, 20, quote.DaysElapsed)
				assert.Equal(t, 10, quote.DaysRemaining)
				// (18000 - 10000) * 10/30 = 2666.67
				assert.True(t, quote.DeltaNet.Equal(decimal.RequireFromString("2666.67")), "delta %s", quote.DeltaNet)
				// 2666.67 * 0.21 = 560.00
				assert.True(t, quote.Tax.Equal(decimal.RequireFromString("560.00")), "tax %s", quote.Tax)
				assert.True(t, quote.Total.Equal(decimal.RequireFromString("3226.67")), "total %s", quote.Total)
				assert.Nil(t, quote.EffectiveDate)
			},
		},
		{
			name: "upgrade_on_first_day_charges_full_delta",
			params: Params{
				Subscription:  activeSubscription("plan_inicial"),
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           cycleStart.Add(8 * time.Hour),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, 30, quote.DaysRemaining)
				assert.True(t, quote.DeltaNet.Equal(decimal.RequireFromString("8000")), "delta %s", quote.DeltaNet)
				assert.True(t, quote.Tax.Equal(decimal.RequireFromString("1680.00")), "tax %s", quote.Tax)
			},
		},
		{
			name: "upgrade_on_last_day_charges_one_day",
			params: Params{
				Subscription:  activeSubscription("plan_inicial"),
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 3, 30, 23, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, 1, quote.DaysRemaining)
				// 8000 * 1/30 = 266.67
				assert.True(t, quote.DeltaNet.Equal(decimal.RequireFromString("266.67")), "delta %s", quote.DeltaNet)
			},
		},
		{
			name: "upgrade_after_cycle_end_requires_renewal",
			params: Params{
				Subscription:  activeSubscription("plan_inicial"),
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeUpgrade, quote.ChangeType)
				assert.Equal(t, 0, quote.DaysRemaining)
				assert.True(t, quote.DeltaNet.IsZero())
				assert.True(t, quote.Total.IsZero())
				assert.Equal(t, NoteRenewalRequired, quote.Note)
			},
		},
		{
			name: "downgrade_deferred_without_credit",
			params: Params{
				Subscription:  activeSubscription("plan_profesional"),
				CurrentPlan:   profesional,
				CandidatePlan: inicial,
				Now:           time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeDowngrade, quote.ChangeType)
				assert.True(t, quote.DeltaNet.IsZero())
				assert.True(t, quote.Tax.IsZero())
				assert.True(t, quote.Total.IsZero())
				require.NotNil(t, quote.EffectiveDate)
				assert.True(t, quote.EffectiveDate.Equal(cycleEnd))
				assert.Equal(t, NoteDowngradeDeferred, quote.Note)
			},
		},
		{
			name: "same_plan_is_no_change",
			params: Params{
				Subscription:  activeSubscription("plan_profesional"),
				CurrentPlan:   profesional,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeNoChange, quote.ChangeType)
				assert.True(t, quote.Total.IsZero())
				assert.Nil(t, quote.EffectiveDate)
			},
		},
		{
			name: "custom_plan_upgrade_prices_extra_seats",
			params: Params{
				Subscription:       activeSubscription("plan_profesional"),
				CurrentPlan:        profesional,
				CandidatePlan:      personalizado,
				CandidateSeatCount: 8,
				Now:                time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:            taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeUpgrade, quote.ChangeType)
				// candidate net: 25000 + 3 * 1500 = 29500
				assert.True(t, quote.CandidateNet.Equal(decimal.RequireFromString("29500")), "candidate net %s", quote.CandidateNet)
				// (29500 - 18000) * 10/30 = 3833.33
				assert.True(t, quote.DeltaNet.Equal(decimal.RequireFromString("3833.33")), "delta %s", quote.DeltaNet)
				assert.Equal(t, 8, quote.SeatCount)
			},
		},
		{
			name: "custom_plan_seat_increase_on_same_plan_is_upgrade",
			params: Params{
				Subscription: func() *subscription.Subscription {
					sub := activeSubscription("plan_personalizado")
					sub.SeatCount = 8
					return sub
				}(),
				CurrentPlan:        personalizado,
				CandidatePlan:      personalizado,
				CandidateSeatCount: 10,
				Now:                time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:            taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeUpgrade, quote.ChangeType)
				// (32500 - 29500) * 10/30 = 1000
				assert.True(t, quote.DeltaNet.Equal(decimal.RequireFromString("1000.00")), "delta %s", quote.DeltaNet)
			},
		},
		{
			name: "custom_plan_zero_seats_means_floor",
			params: Params{
				Subscription: func() *subscription.Subscription {
					sub := activeSubscription("plan_personalizado")
					sub.SeatCount = 5
					return sub
				}(),
				CurrentPlan:        personalizado,
				CandidatePlan:      personalizado,
				CandidateSeatCount: 0,
				Now:                time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:            taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeNoChange, quote.ChangeType)
			},
		},
		{
			name: "custom_plan_seat_decrease_deferred_like_downgrade",
			params: Params{
				Subscription: func() *subscription.Subscription {
					sub := activeSubscription("plan_personalizado")
					sub.SeatCount = 10
					return sub
				}(),
				CurrentPlan:        personalizado,
				CandidatePlan:      personalizado,
				CandidateSeatCount: 6,
				Now:                time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:            taxRate,
			},
			check: func(t *testing.T, quote *Quote) {
				assert.Equal(t, types.PlanChangeTypeDowngrade, quote.ChangeType)
				assert.True(t, quote.Total.IsZero())
				require.NotNil(t, quote.EffectiveDate)
				assert.True(t, quote.EffectiveDate.Equal(cycleEnd))
			},
		},
		{
			name: "seat_count_above_ceiling_rejected",
			params: Params{
				Subscription:       activeSubscription("plan_profesional"),
				CurrentPlan:        profesional,
				CandidatePlan:      personalizado,
				CandidateSeatCount: 50,
				Now:                time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:            taxRate,
			},
			expectedError: ierr.ErrSeatCountOutOfRange,
		},
		{
			name: "inverted_cycle_rejected",
			params: Params{
				Subscription: func() *subscription.Subscription {
					sub := activeSubscription("plan_inicial")
					sub.CurrentPeriodStart = cycleEnd
					sub.CurrentPeriodEnd = cycleStart
					return sub
				}(),
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			expectedError: ierr.ErrInvalidCycle,
		},
		{
			name: "missing_subscription_rejected",
			params: Params{
				CurrentPlan:   inicial,
				CandidatePlan: profesional,
				Now:           time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
				TaxRate:       taxRate,
			},
			expectedError: ierr.ErrValidation,
		},
	}

	calc := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Calculate(context.Background(), tt.params)
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, quote)
			tt.check(t, quote)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			name:     "whole_days",
			start:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			expected: 30,
		},
		{
			name:     "time_of_day_ignored",
			start:    time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "same_day_is_zero",
			start:    time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "end_before_start_is_negative",
			start:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
			expected: -2,
		},
		{
			name:     "dst_transition_counts_calendar_days",
			start:    time.Date(2026, 3, 28, 12, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 30, 12, 0, 0, 0, time.UTC),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, daysBetween(tt.start, tt.end))
		})
	}
}
