package repository

import (
    "context"
    "database/sql"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/a6cars/rental-api/internal/model"
)

func newMockTx(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *sql.Tx) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    mock.ExpectBegin()
    tx, err := db.Begin()
    require.NoError(t, err)
    return db, mock, tx
}

func reservationRows(status string, token interface{}) *sqlmock.Rows {
    now := time.Now().UTC()
    return sqlmock.NewRows([]string{
        "id", "vehicle_id", "customer_id", "start_date", "end_date",
        "amount", "status", "handover_token", "created_at", "updated_at",
    }).AddRow(1, 3, 9, now, now.Add(48*time.Hour), "2000.00", status, token, now, now)
}

func TestCreateTxInsertsBooked(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec(regexp.QuoteMeta(
        `INSERT INTO reservations (vehicle_id, customer_id, start_date, end_date, amount, status) VALUES (?, ?, ?, ?, ?, ?)`)).
        WithArgs(uint64(3), uint64(9), sqlmock.AnyArg(), sqlmock.AnyArg(), "2000.00", "BOOKED").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectQuery("SELECT id, vehicle_id, customer_id").
        WithArgs(uint64(1)).
        WillReturnRows(reservationRows("BOOKED", nil))

    res := &model.Reservation{
        VehicleID:  3,
        CustomerID: 9,
        StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
        EndDate:    time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
        Amount:     decimal.NewFromInt(2000),
    }
    repo := NewReservationRepo(db)
    require.NoError(t, repo.CreateTx(context.Background(), tx, res))
    assert.Equal(t, uint64(1), res.ID)
    assert.Equal(t, model.StatusBooked, res.Status)
    assert.True(t, res.Amount.Equal(decimal.NewFromInt(2000)))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxMovesForward(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec(regexp.QuoteMeta(
        `UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status IN (?)`)).
        WithArgs("PENDING_PAYMENT", uint64(1), "BOOKED").
        WillReturnResult(sqlmock.NewResult(0, 1))

    repo := NewReservationRepo(db)
    err := repo.TransitionTx(context.Background(), tx, 1,
        []model.Status{model.StatusBooked}, model.StatusPendingPayment, nil)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxGuardLosesRace(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    // a concurrent request already moved the row past BOOKED: zero rows match
    mock.ExpectExec("UPDATE reservations SET status").
        WithArgs("PENDING_PAYMENT", uint64(1), "BOOKED").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM reservations WHERE id = ?`)).
        WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

    repo := NewReservationRepo(db)
    err := repo.TransitionTx(context.Background(), tx, 1,
        []model.Status{model.StatusBooked}, model.StatusPendingPayment, nil)
    assert.ErrorIs(t, err, ErrInvalidTransition)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxMissingRow(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    mock.ExpectExec("UPDATE reservations SET status").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM reservations WHERE id = ?`)).
        WithArgs(uint64(404)).
        WillReturnError(sql.ErrNoRows)

    repo := NewReservationRepo(db)
    err := repo.TransitionTx(context.Background(), tx, 404,
        []model.Status{model.StatusBooked}, model.StatusPendingPayment, nil)
    assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTransitionTxRejectsSkipWithoutSQL(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    repo := NewReservationRepo(db)
    // BOOKED -> PAID skips PENDING_PAYMENT; rejected before touching the DB
    err := repo.TransitionTx(context.Background(), tx, 1,
        []model.Status{model.StatusBooked}, model.StatusPaid, nil)
    assert.ErrorIs(t, err, ErrInvalidTransition)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxAppliesTokenPatch(t *testing.T) {
    db, mock, tx := newMockTx(t)
    defer db.Close()

    token := "signed-token"
    mock.ExpectExec(regexp.QuoteMeta(
        `UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP(), handover_token = ? WHERE id = ? AND status IN (?)`)).
        WithArgs("VERIFIED", token, uint64(5), "PAID").
        WillReturnResult(sqlmock.NewResult(0, 1))

    repo := NewReservationRepo(db)
    err := repo.TransitionTx(context.Background(), tx, 5,
        []model.Status{model.StatusPaid}, model.StatusVerified,
        &TransitionPatch{HandoverToken: &token})
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDParsesAmountAndToken(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectQuery("SELECT id, vehicle_id, customer_id").
        WithArgs(uint64(1)).
        WillReturnRows(reservationRows("VERIFIED", "tok"))

    repo := NewReservationRepo(db)
    res, err := repo.GetByID(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, model.StatusVerified, res.Status)
    require.NotNil(t, res.HandoverToken)
    assert.Equal(t, "tok", *res.HandoverToken)
    assert.Equal(t, "2000.00", res.Amount.StringFixed(2))
}
