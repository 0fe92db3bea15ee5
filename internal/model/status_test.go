package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestStatusOnlyMovesForward(t *testing.T) {
    order := []Status{StatusBooked, StatusPendingPayment, StatusPaid, StatusVerified, StatusCollected}
    for i, from := range order {
        for j, to := range order {
            got := from.CanTransition(to)
            want := j == i+1
            assert.Equal(t, want, got, "%s -> %s", from, to)
        }
    }
}

func TestCollectedIsTerminal(t *testing.T) {
    assert.True(t, StatusCollected.Terminal())
    assert.False(t, StatusBooked.Terminal())
    assert.False(t, StatusVerified.Terminal())
}

func TestUnknownStatusInvalid(t *testing.T) {
    assert.False(t, Status("CANCELLED").Valid())
    assert.False(t, Status("CANCELLED").CanTransition(StatusBooked))
    assert.True(t, StatusPaid.Valid())
}
