package model

// Status enumerates the lifecycle states of a reservation.  A reservation
// starts in BOOKED and only ever moves forward:
//
//	BOOKED → PENDING_PAYMENT → PAID → VERIFIED → COLLECTED
//
// There is no cancellation path; COLLECTED is terminal.  The database
// enforces the same ordering through the status-guarded UPDATE in the
// reservation repository, so this type exists to reject obviously illegal
// transitions before a transaction is even opened.
type Status string

const (
    StatusBooked         Status = "BOOKED"          // created, no payment requested yet
    StatusPendingPayment Status = "PENDING_PAYMENT" // payment intent issued, awaiting money
    StatusPaid           Status = "PAID"            // operator confirmed payment received
    StatusVerified       Status = "VERIFIED"        // handover token minted
    StatusCollected      Status = "COLLECTED"       // vehicle handed over (terminal)
)

// next maps each state to the single state that may follow it.  Terminal
// states are absent from the map.
var next = map[Status]Status{
    StatusBooked:         StatusPendingPayment,
    StatusPendingPayment: StatusPaid,
    StatusPaid:           StatusVerified,
    StatusVerified:       StatusCollected,
}

// Valid reports whether s is one of the five known states.
func (s Status) Valid() bool {
    switch s {
    case StatusBooked, StatusPendingPayment, StatusPaid, StatusVerified, StatusCollected:
        return true
    }
    return false
}

// CanTransition reports whether moving from s to "to" is legal.  Only the
// immediate successor is allowed; skips and regressions are rejected.
func (s Status) CanTransition(to Status) bool {
    n, ok := next[s]
    return ok && n == to
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
    _, ok := next[s]
    return !ok && s.Valid()
}
