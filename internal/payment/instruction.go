// Package payment builds the scannable payment instruction handed to a
// customer when they request to pay for a reservation.  The instruction
// carries everything a banking app needs to credit the operator: payee
// identifier, amount, currency and a memo referencing the reservation.
// Whether money actually moves is outside this service; the operator
// confirms receipt manually.
package payment

import (
    "encoding/base64"
    "encoding/json"
    "fmt"
    "time"

    "github.com/shopspring/decimal"
)

// Instruction is the payload encoded into the payment QR.  The Ref field
// is the transaction reference stored on the payment intent so the
// operator can match an incoming transfer to a reservation.
type Instruction struct {
    PayeeID   string          `json:"payee_id"`
    Amount    decimal.Decimal `json:"amount"`
    Currency  string          `json:"currency"`
    Memo      string          `json:"memo"`
    Ref       string          `json:"ref"`
    IssuedAt  time.Time       `json:"issued_at"`
}

// NewInstruction composes an instruction for a reservation.  The memo
// references the reservation id so a bank statement line can be traced
// back without decoding the QR.
func NewInstruction(payeeID string, amount decimal.Decimal, currency string, reservationID uint64, ref string, now time.Time) Instruction {
    return Instruction{
        PayeeID:  payeeID,
        Amount:   amount,
        Currency: currency,
        Memo:     fmt.Sprintf("A6CARS reservation #%d", reservationID),
        Ref:      ref,
        IssuedAt: now.UTC(),
    }
}

// Encode serializes the instruction into the string rendered as a QR code
// by the frontend.  Base64-encoded JSON keeps the payload opaque to
// intermediaries while remaining reversible for display and testing.
func (i Instruction) Encode() (string, error) {
    raw, err := json.Marshal(i)
    if err != nil {
        return "", err
    }
    return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses a previously encoded instruction payload.
func Decode(payload string) (Instruction, error) {
    raw, err := base64.StdEncoding.DecodeString(payload)
    if err != nil {
        return Instruction{}, fmt.Errorf("decode payload: %w", err)
    }
    var i Instruction
    if err := json.Unmarshal(raw, &i); err != nil {
        return Instruction{}, fmt.Errorf("unmarshal payload: %w", err)
    }
    return i, nil
}
