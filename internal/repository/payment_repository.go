package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/a6cars/rental-api/internal/model"
)

// PaymentRepo owns the payment_intents table.  Intents reference
// reservations by identifier only; the reservation row itself is mutated
// exclusively through ReservationRepo.TransitionTx, inside the same
// transaction as the intent write.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const intentCols = `id, reservation_id, customer_id, amount, currency, status, payment_ref, created_at, updated_at`

// CreateTx inserts a pending payment intent within an existing
// transaction.  The schema carries a uniqueness constraint on
// reservation_id, so a concurrent insert for the same reservation fails
// with ErrConflict even if both requests passed the status guard check.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, in *model.PaymentIntent) error {
    const q = `INSERT INTO payment_intents (reservation_id, customer_id, amount, currency, status, payment_ref) VALUES (?, ?, ?, ?, ?, ?)`
    in.Status = model.IntentPending
    res, err := tx.ExecContext(ctx, q,
        in.ReservationID, in.CustomerID, in.Amount.StringFixed(2), in.Currency, string(in.Status), in.PaymentRef)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    in.ID = uint64(id)
    return nil
}

// GetPendingByReservationTx returns the pending intent for a reservation
// inside a transaction, locking it for the confirmation update.
// sql.ErrNoRows is returned when no pending intent exists.
func (r *PaymentRepo) GetPendingByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*model.PaymentIntent, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+intentCols+` FROM payment_intents WHERE reservation_id = ? AND status = ? FOR UPDATE`,
        reservationID, string(model.IntentPending))
    return scanIntent(row)
}

// GetByReservation returns the intent attached to a reservation,
// regardless of status.  sql.ErrNoRows when absent.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.PaymentIntent, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+intentCols+` FROM payment_intents WHERE reservation_id = ?`, reservationID)
    return scanIntent(row)
}

// MarkVerifiedTx flips an intent from PENDING to VERIFIED.  The status
// guard lives in the UPDATE, so a second operator confirming the same
// intent races to zero affected rows and gets ErrInvalidTransition.
func (r *PaymentRepo) MarkVerifiedTx(ctx context.Context, tx *sql.Tx, intentID uint64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE payment_intents SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
        string(model.IntentVerified), intentID, string(model.IntentPending))
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInvalidTransition
    }
    return nil
}

func scanIntent(row rowScanner) (*model.PaymentIntent, error) {
    var (
        in        model.PaymentIntent
        amountStr string
        statusStr string
    )
    err := row.Scan(&in.ID, &in.ReservationID, &in.CustomerID, &amountStr, &in.Currency, &statusStr, &in.PaymentRef, &in.CreatedAt, &in.UpdatedAt)
    if err != nil {
        return nil, err
    }
    amount, err := decimal.NewFromString(amountStr)
    if err != nil {
        return nil, err
    }
    in.Amount = amount
    in.Status = model.IntentStatus(statusStr)
    return &in, nil
}
