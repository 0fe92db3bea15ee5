package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// IntentStatus enumerates the states of a payment intent.  An intent is
// PENDING from creation until the operator confirms the money arrived,
// at which point it becomes VERIFIED together with the reservation's
// PENDING_PAYMENT → PAID transition.
type IntentStatus string

const (
    IntentPending  IntentStatus = "PENDING"
    IntentVerified IntentStatus = "VERIFIED"
)

// PaymentIntent is a tracked claim that a specific payment is expected
// for a reservation.  At most one active intent exists per reservation,
// enforced by a uniqueness constraint on payment_intents.reservation_id.
// The Amount always equals the reservation's amount at creation time.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation being paid for.
//  CustomerID    – customer expected to pay.
//  Amount        – amount to transfer; copied from the reservation.
//  Currency      – ISO currency code the amount is denominated in.
//  Status        – PENDING or VERIFIED.
//  PaymentRef    – externally presented transaction reference (uuid).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type PaymentIntent struct {
    ID            uint64          // payment_intents.id
    ReservationID uint64          // payment_intents.reservation_id
    CustomerID    uint64          // payment_intents.customer_id
    Amount        decimal.Decimal // payment_intents.amount
    Currency      string          // payment_intents.currency
    Status        IntentStatus    // payment_intents.status
    PaymentRef    string          // payment_intents.payment_ref
    CreatedAt     time.Time       // payment_intents.created_at
    UpdatedAt     time.Time       // payment_intents.updated_at
}
