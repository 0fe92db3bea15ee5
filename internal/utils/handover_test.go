package utils

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandoverTokenRoundTrip(t *testing.T) {
    now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
    claims := HandoverClaims{
        ReservationID: 7,
        CustomerName:  "Jane Doe",
        CustomerEmail: "jane@example.com",
        Vehicle:       "2021 Audi A6",
        StartDate:     "2024-06-03",
        EndDate:       "2024-06-05",
    }
    raw, err := NewHandoverToken("handover-secret", claims, now)
    require.NoError(t, err)

    parsed, err := ParseHandoverToken("handover-secret", raw)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), parsed.ReservationID)
    assert.Equal(t, "Jane Doe", parsed.CustomerName)
    assert.Equal(t, "2021 Audi A6", parsed.Vehicle)
    assert.Equal(t, "2024-06-03", parsed.StartDate)
}

func TestHandoverTokenWrongSecret(t *testing.T) {
    raw, err := NewHandoverToken("secret-a", HandoverClaims{ReservationID: 1}, time.Now())
    require.NoError(t, err)

    _, err = ParseHandoverToken("secret-b", raw)
    assert.ErrorIs(t, err, ErrBadHandoverToken)
}

func TestHandoverTokenGarbage(t *testing.T) {
    _, err := ParseHandoverToken("secret", "definitely.not.a.token")
    assert.ErrorIs(t, err, ErrBadHandoverToken)
}

func TestHandoverTokenDeterministicForFixedClock(t *testing.T) {
    now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
    claims := HandoverClaims{ReservationID: 3, Vehicle: "2020 BMW 320i"}
    a, err := NewHandoverToken("s", claims, now)
    require.NoError(t, err)
    b, err := NewHandoverToken("s", claims, now)
    require.NoError(t, err)
    assert.Equal(t, a, b)
}
