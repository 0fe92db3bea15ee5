package pricing

import (
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuoteTwoDayRental(t *testing.T) {
    // day rate 1000, 2024-01-01 .. 2024-01-03 -> 2 days -> 2000
    amount, err := Quote(decimal.NewFromInt(1000), date(2024, 1, 1), date(2024, 1, 3))
    require.NoError(t, err)
    assert.True(t, amount.Equal(decimal.NewFromInt(2000)), "got %s", amount)
}

func TestQuoteMinimumOneDay(t *testing.T) {
    // less than 24 hours still bills one full day
    start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
    end := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
    amount, err := Quote(decimal.NewFromInt(750), start, end)
    require.NoError(t, err)
    assert.True(t, amount.Equal(decimal.NewFromInt(750)), "got %s", amount)
}

func TestQuotePartialDayRoundsUp(t *testing.T) {
    // 2 days and 1 hour bills 3 days
    start := date(2024, 1, 1)
    end := start.Add(49 * time.Hour)
    days, err := BillableDays(start, end)
    require.NoError(t, err)
    assert.Equal(t, int64(3), days)
}

func TestQuoteRoundsHalfUp(t *testing.T) {
    // 33.335 * 1 day rounds to 33.34, not down to 33.33
    rate := decimal.RequireFromString("33.335")
    amount, err := Quote(rate, date(2024, 1, 1), date(2024, 1, 2))
    require.NoError(t, err)
    assert.Equal(t, "33.34", amount.StringFixed(2))
}

func TestQuoteInvalidRange(t *testing.T) {
    _, err := Quote(decimal.NewFromInt(100), date(2024, 1, 3), date(2024, 1, 1))
    assert.ErrorIs(t, err, ErrInvalidRange)

    _, err = Quote(decimal.NewFromInt(100), date(2024, 1, 1), date(2024, 1, 1))
    assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestQuoteDeterministic(t *testing.T) {
    rate := decimal.RequireFromString("149.99")
    a1, err := Quote(rate, date(2024, 3, 10), date(2024, 3, 17))
    require.NoError(t, err)
    a2, err := Quote(rate, date(2024, 3, 10), date(2024, 3, 17))
    require.NoError(t, err)
    assert.True(t, a1.Equal(a2))
    assert.Equal(t, "1049.93", a1.StringFixed(2))
}
