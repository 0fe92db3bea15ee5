package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Reservation records a customer's claim on a vehicle for a date range.
// It is the aggregate this service manages: every other record (payment
// intents, handover tokens) hangs off a reservation and mutates it only
// through the repository's guarded transition.
//
// Fields:
//  ID            – primary key identifier.
//  VehicleID     – vehicle being rented.
//  CustomerID    – customer who made the reservation.
//  StartDate     – first rental day (inclusive).
//  EndDate       – day the vehicle is due back; must be after StartDate.
//  Amount        – total charge, day rate × billable days.
//  Status        – state of the reservation (see status.go).
//  HandoverToken – signed token minted at verification time (nullable).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
    ID            uint64          // reservations.id
    VehicleID     uint64          // reservations.vehicle_id
    CustomerID    uint64          // reservations.customer_id
    StartDate     time.Time       // reservations.start_date
    EndDate       time.Time       // reservations.end_date
    Amount        decimal.Decimal // reservations.amount
    Status        Status          // reservations.status
    HandoverToken *string         // reservations.handover_token (nullable)
    CreatedAt     time.Time       // reservations.created_at
    UpdatedAt     time.Time       // reservations.updated_at
}
