package payment

import (
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestInstructionRoundTrip(t *testing.T) {
    now := time.Date(2024, 5, 2, 12, 30, 0, 0, time.UTC)
    in := NewInstruction("A6CARS-MERCHANT", decimal.RequireFromString("2000.00"), "USD", 42, "tx-ref-1", now)

    payload, err := in.Encode()
    require.NoError(t, err)
    require.NotEmpty(t, payload)

    out, err := Decode(payload)
    require.NoError(t, err)
    assert.Equal(t, "A6CARS-MERCHANT", out.PayeeID)
    assert.Equal(t, "USD", out.Currency)
    assert.Equal(t, "tx-ref-1", out.Ref)
    assert.Equal(t, "A6CARS reservation #42", out.Memo)
    assert.True(t, out.Amount.Equal(in.Amount))
    assert.True(t, out.IssuedAt.Equal(now))
}

func TestDecodeRejectsGarbage(t *testing.T) {
    _, err := Decode("not-base64!!!")
    assert.Error(t, err)

    // valid base64 but not JSON
    _, err = Decode("aGVsbG8gd29ybGQ=")
    assert.Error(t, err)
}
