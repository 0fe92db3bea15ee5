package model

import (
    "fmt"
    "time"

    "github.com/shopspring/decimal"
)

// Vehicle represents a car in the rental catalog as stored in the
// `vehicles` table.  The catalog is managed by operators; the booking
// lifecycle only ever reads it (day rate lookup at reservation time and
// descriptor composition for handover tokens).
//
// Fields:
//  ID        – primary key identifier.
//  Brand     – manufacturer name.
//  Model     – model name.
//  Year      – production year.
//  DayRate   – rental price per day.
//  Location  – pickup location.
//  ImageURL  – catalog photo path (nullable).
//  IsActive  – whether the vehicle is offered for booking.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Vehicle struct {
    ID        uint64          // vehicles.id
    Brand     string          // vehicles.brand
    Model     string          // vehicles.model
    Year      uint16          // vehicles.year
    DayRate   decimal.Decimal // vehicles.day_rate
    Location  string          // vehicles.location
    ImageURL  *string         // vehicles.image_url (nullable)
    IsActive  bool            // vehicles.is_active
    CreatedAt time.Time       // vehicles.created_at
    UpdatedAt time.Time       // vehicles.updated_at
}

// Descriptor returns a short human-readable label ("2021 Audi A6") used in
// handover tokens and operator confirmations.
func (v Vehicle) Descriptor() string {
    return fmt.Sprintf("%d %s %s", v.Year, v.Brand, v.Model)
}
