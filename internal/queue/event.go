// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentVerifiedEvent is published when an operator confirms that a
// customer's transfer arrived. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type PaymentVerifiedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    CustomerID    uint64 `json:"customer_id"`
    Amount        string `json:"amount"`
    PaymentRef    string `json:"payment_ref"`
    VerifiedAt    string `json:"verified_at"`
}

// VehicleCollectedEvent is published when a handover token is redeemed and
// the customer drives off with the vehicle.
type VehicleCollectedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    CustomerID    uint64 `json:"customer_id"`
    CustomerName  string `json:"customer_name"`
    Vehicle       string `json:"vehicle"`
    CollectedAt   string `json:"collected_at"`
}
