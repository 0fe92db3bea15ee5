package utils

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrBadHandoverToken is returned when a presented handover token cannot
// be parsed or its signature does not verify.
var ErrBadHandoverToken = errors.New("invalid handover token")

// HandoverClaims is the payload sealed into a handover token when the
// operator verifies a reservation's payment.  Everything an operator needs
// at pickup is embedded so the token is readable without a database round
// trip; redemption still re-checks the stored state.  The token is HMAC
// signed, so knowing the field values alone is not enough to forge one.
type HandoverClaims struct {
    ReservationID uint64 `json:"rid"`
    CustomerName  string `json:"customer_name"`
    CustomerEmail string `json:"customer_email"`
    Vehicle       string `json:"vehicle"`
    StartDate     string `json:"start_date"`
    EndDate       string `json:"end_date"`
    jwt.RegisteredClaims
}

// NewHandoverToken seals the given reservation details into a signed
// HS256 token.  The caller supplies the current time so minting is
// deterministic under test.
func NewHandoverToken(secret string, claims HandoverClaims, now time.Time) (string, error) {
    claims.IssuedAt = jwt.NewNumericDate(now.UTC())
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseHandoverToken verifies the signature of a presented token and
// returns its claims.  Tokens signed with a different secret or algorithm
// are rejected with ErrBadHandoverToken.
func ParseHandoverToken(secret, raw string) (*HandoverClaims, error) {
    var claims HandoverClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrBadHandoverToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrBadHandoverToken
    }
    if claims.ReservationID == 0 {
        return nil, ErrBadHandoverToken
    }
    return &claims, nil
}
