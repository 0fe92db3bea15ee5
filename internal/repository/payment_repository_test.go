package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/a6cars/rental-api/internal/model"
)

func TestPaymentCreateTx(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec(regexp.QuoteMeta(
        `INSERT INTO payment_intents (reservation_id, customer_id, amount, currency, status, payment_ref) VALUES (?, ?, ?, ?, ?, ?)`)).
        WithArgs(uint64(1), uint64(9), "2000.00", "USD", "PENDING", "ref-1").
        WillReturnResult(sqlmock.NewResult(11, 1))

    repo := NewPaymentRepo(db)
    in := &model.PaymentIntent{
        ReservationID: 1,
        CustomerID:    9,
        Amount:        decimal.NewFromInt(2000),
        Currency:      "USD",
        PaymentRef:    "ref-1",
    }
    require.NoError(t, repo.CreateTx(context.Background(), tx, in))
    assert.Equal(t, uint64(11), in.ID)
    assert.Equal(t, model.IntentPending, in.Status)
}

func TestPaymentCreateTxDuplicateIntent(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    // MySQL duplicate-key on the reservation_id unique index
    mock.ExpectExec("INSERT INTO payment_intents").
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1' for key 'uq_intent_reservation'"))

    repo := NewPaymentRepo(db)
    err := repo.CreateTx(context.Background(), tx, &model.PaymentIntent{
        ReservationID: 1, CustomerID: 9, Amount: decimal.NewFromInt(2000), PaymentRef: "ref-2",
    })
    assert.ErrorIs(t, err, ErrConflict)
}

func TestMarkVerifiedTx(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec(regexp.QuoteMeta(
        `UPDATE payment_intents SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`)).
        WithArgs("VERIFIED", uint64(11), "PENDING").
        WillReturnResult(sqlmock.NewResult(0, 1))

    repo := NewPaymentRepo(db)
    require.NoError(t, repo.MarkVerifiedTx(context.Background(), tx, 11))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkVerifiedTxAlreadyVerified(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec("UPDATE payment_intents SET status").
        WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewPaymentRepo(db)
    err := repo.MarkVerifiedTx(context.Background(), tx, 11)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetPendingByReservationTx(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    now := time.Now().UTC()
    rows := sqlmock.NewRows([]string{
        "id", "reservation_id", "customer_id", "amount", "currency", "status", "payment_ref", "created_at", "updated_at",
    }).AddRow(11, 1, 9, "2000.00", "USD", "PENDING", "ref-1", now, now)
    mock.ExpectQuery("SELECT id, reservation_id, customer_id").
        WithArgs(uint64(1), "PENDING").
        WillReturnRows(rows)

    repo := NewPaymentRepo(db)
    in, err := repo.GetPendingByReservationTx(context.Background(), tx, 1)
    require.NoError(t, err)
    assert.Equal(t, uint64(11), in.ID)
    assert.Equal(t, "ref-1", in.PaymentRef)
    assert.True(t, in.Amount.Equal(decimal.NewFromInt(2000)))
}

func TestGetPendingByReservationTxNone(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectQuery("SELECT id, reservation_id, customer_id").
        WillReturnError(sql.ErrNoRows)

    repo := NewPaymentRepo(db)
    _, err := repo.GetPendingByReservationTx(context.Background(), tx, 1)
    assert.ErrorIs(t, err, sql.ErrNoRows)
}
