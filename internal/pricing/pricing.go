// Package pricing computes the total charge for a reservation from a
// vehicle's day rate and the requested date range.  It is a pure
// calculation with no side effects so that reservation creation can be
// retried safely with identical inputs.
package pricing

import (
    "errors"
    "time"

    "github.com/shopspring/decimal"
)

// ErrInvalidRange is returned when the end date is not after the start
// date.  Handlers should translate this into an HTTP 400 response.
var ErrInvalidRange = errors.New("invalid date range")

// BillableDays returns the number of days charged for the range
// [start, end).  Partial days round up and the minimum billable duration
// is one day.  ErrInvalidRange is returned when end <= start.
func BillableDays(start, end time.Time) (int64, error) {
    if !end.After(start) {
        return 0, ErrInvalidRange
    }
    d := end.Sub(start)
    days := int64(d / (24 * time.Hour))
    if d%(24*time.Hour) != 0 {
        days++
    }
    if days < 1 {
        days = 1
    }
    return days, nil
}

// Quote returns the total amount for renting at dayRate over [start, end):
// dayRate multiplied by the billable days, rounded half-up to two decimal
// places so repeated fractional rates never systematically under-charge.
// The result is deterministic for identical inputs.
func Quote(dayRate decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
    days, err := BillableDays(start, end)
    if err != nil {
        return decimal.Zero, err
    }
    amount := dayRate.Mul(decimal.NewFromInt(days))
    return amount.Round(2), nil
}
