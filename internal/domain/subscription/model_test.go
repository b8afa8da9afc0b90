package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

func testSubscription() *Subscription {
	return &Subscription{
		ID:                 "subs_test",
		PlanID:             "plan_inicial",
		SubscriptionStatus: types.SubscriptionStatusActive,
		Currency:           "eur",
		CurrentPeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Version:            1,
	}
}

func TestSubscriptionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, testSubscription().Validate())
	})

	t.Run("end_not_after_start", func(t *testing.T) {
		sub := testSubscription()
		sub.CurrentPeriodEnd = sub.CurrentPeriodStart
		err := sub.Validate()
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidCycle(err))
	})

	t.Run("scheduled_date_before_cycle_end", func(t *testing.T) {
		sub := testSubscription()
		planID := "plan_profesional"
		early := sub.CurrentPeriodEnd.AddDate(0, 0, -5)
		sub.ScheduledPlanID = &planID
		sub.ScheduledEffectiveDate = &early
		err := sub.Validate()
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidCycle(err))
	})
}

func TestScheduleChange(t *testing.T) {
	sub := testSubscription()

	sub.ScheduleChange("plan_profesional", 8)
	require.True(t, sub.HasScheduledChange())
	assert.Equal(t, "plan_profesional", *sub.ScheduledPlanID)
	require.NotNil(t, sub.ScheduledSeatCount)
	assert.Equal(t, 8, *sub.ScheduledSeatCount)
	assert.True(t, sub.ScheduledEffectiveDate.Equal(sub.CurrentPeriodEnd))
	require.NoError(t, sub.Validate())

	// Rescheduling replaces the pending change
	sub.ScheduleChange("plan_inicial", 0)
	assert.Equal(t, "plan_inicial", *sub.ScheduledPlanID)
	assert.Nil(t, sub.ScheduledSeatCount)

	sub.ClearScheduledChange()
	assert.False(t, sub.HasScheduledChange())
	assert.Nil(t, sub.ScheduledPlanID)
	assert.Nil(t, sub.ScheduledSeatCount)
	assert.Nil(t, sub.ScheduledEffectiveDate)
}
