package plan

import (
	"github.com/shopspring/decimal"

	ierr "github.com/inmoval/billing/internal/errors"
	"github.com/inmoval/billing/internal/types"
)

// Plan is a subscription catalog entry. A plan referenced by an active
// subscription cycle is immutable: price edits create a new plan row that
// applies from the next cycle.
type Plan struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	LookupKey   string `db:"lookup_key" json:"lookup_key"`
	Description string `db:"description" json:"description"`

	// Currency is a lowercase 3 letter ISO code
	Currency string `db:"currency" json:"currency"`

	// NetMonthlyPrice is the net (pre-tax) price for one billing cycle
	NetMonthlyPrice decimal.Decimal `db:"net_monthly_price" json:"net_monthly_price"`

	// MaxSeats is the advisor seat capacity included in the base price
	MaxSeats int `db:"max_seats" json:"max_seats"`

	// CycleDays is the billing cycle duration in days
	CycleDays int `db:"cycle_days" json:"cycle_days"`

	// Trial marks the free evaluation plan granted at signup
	Trial bool `db:"trial" json:"trial"`

	// TrackerIncluded gates the sales-tracker module on this tier
	TrackerIncluded bool `db:"tracker_included" json:"tracker_included"`

	// Custom marks the variable-seat tier. For custom plans SeatFloor seats
	// are covered by NetMonthlyPrice and each seat above the floor, up to
	// SeatCeiling, costs PerSeatPrice extra.
	Custom       bool            `db:"custom" json:"custom"`
	SeatFloor    int             `db:"seat_floor" json:"seat_floor"`
	SeatCeiling  int             `db:"seat_ceiling" json:"seat_ceiling"`
	PerSeatPrice decimal.Decimal `db:"per_seat_price" json:"per_seat_price"`

	types.BaseModel
}

// EffectiveNetPrice returns the net price of the plan for the given seat
// count. Standard plans ignore seatCount. For custom plans a zero seatCount
// means "the floor".
func (p *Plan) EffectiveNetPrice(seatCount int) (decimal.Decimal, error) {
	if !p.Custom {
		return p.NetMonthlyPrice, nil
	}

	if seatCount == 0 {
		seatCount = p.SeatFloor
	}

	if seatCount < p.SeatFloor || (p.SeatCeiling > 0 && seatCount > p.SeatCeiling) {
		return decimal.Zero, ierr.NewErrorf("seat count %d outside allowed range [%d, %d]", seatCount, p.SeatFloor, p.SeatCeiling).
			WithHint("Requested seat count is not available on this plan").
			WithReportableDetails(map[string]any{
				"seat_count":   seatCount,
				"seat_floor":   p.SeatFloor,
				"seat_ceiling": p.SeatCeiling,
			}).
			Mark(ierr.ErrSeatCountOutOfRange)
	}

	extraSeats := seatCount - p.SeatFloor
	if extraSeats < 0 {
		extraSeats = 0
	}

	extra := p.PerSeatPrice.Mul(decimal.NewFromInt(int64(extraSeats)))
	return p.NetMonthlyPrice.Add(extra), nil
}
