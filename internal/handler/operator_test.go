package handler

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a6cars/rental-api/internal/repository"
	"github.com/a6cars/rental-api/internal/utils"
)

func newOperatorHandler(t *testing.T) (*OperatorHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewOperatorHandler(testCfg,
		repository.NewReservationRepo(db),
		repository.NewPaymentRepo(db))
	h.Now = fixedClock
	return h, mock, db
}

func intentRow(id, reservationID, customerID uint64, amount, status string) *sqlmock.Rows {
	now := fixedClock()
	return sqlmock.NewRows([]string{
		"id", "reservation_id", "customer_id", "amount", "currency", "status", "payment_ref", "created_at", "updated_at",
	}).AddRow(id, reservationID, customerID, amount, "USD", status, "11111111-2222-3333-4444-555555555555", now, now)
}

func handoverRow(status string, token interface{}) *sqlmock.Rows {
	now := fixedClock()
	return sqlmock.NewRows([]string{
		"id", "vehicle_id", "customer_id", "start_date", "end_date",
		"amount", "status", "handover_token", "created_at", "updated_at",
		"name", "email", "vehicle",
	}).AddRow(1, 3, 9, now, now.Add(48*time.Hour), "2000.00", status, token, now, now,
		"Nina Bauer", "nina@example.com", "2021 Audi A6")
}

func TestVerifyPaymentConfirmsIntentAndReservation(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, reservation_id, customer_id").
		WithArgs(uint64(1), "PENDING").
		WillReturnRows(intentRow(5, 1, 9, "2000.00", "PENDING"))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE payment_intents SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`)).
		WithArgs("VERIFIED", uint64(5), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status IN (?)`)).
		WithArgs("PAID", uint64(1), "PENDING_PAYMENT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/reservations/1/verify-payment", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.VerifyPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "PAID", body["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyPaymentWithoutIntent(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, reservation_id, customer_id").
		WithArgs(uint64(1), "PENDING").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/reservations/1/verify-payment", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.VerifyPayment(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The loser of a double confirmation sees its guarded UPDATE match zero
// rows and the whole transaction rolls back.
func TestVerifyPaymentTwiceConflict(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, reservation_id, customer_id").
		WithArgs(uint64(1), "PENDING").
		WillReturnRows(intentRow(5, 1, 9, "2000.00", "PENDING"))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE payment_intents SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`)).
		WithArgs("VERIFIED", uint64(5), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/reservations/1/verify-payment", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.VerifyPayment(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMintHandoverTokenSealsAndStores(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.vehicle_id, r.customer_id").
		WithArgs(uint64(1)).
		WillReturnRows(handoverRow("PAID", nil))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP(), handover_token = ? WHERE id = ? AND status IN (?)`)).
		WithArgs("VERIFIED", sqlmock.AnyArg(), uint64(1), "PAID").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/reservations/1/handover-token", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.MintHandoverToken(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VERIFIED", body["status"])

	// The returned token must verify against the handover secret and
	// carry the reservation details that were sealed into it.
	token, _ := body["handover_token"].(string)
	require.NotEmpty(t, token)
	claims, err := utils.ParseHandoverToken(testCfg.HandoverSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.ReservationID)
	assert.Equal(t, "Nina Bauer", claims.CustomerName)
	assert.Equal(t, "2021 Audi A6", claims.Vehicle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMintHandoverTokenTwiceConflict(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.vehicle_id, r.customer_id").
		WithArgs(uint64(1)).
		WillReturnRows(handoverRow("VERIFIED", "already-stored-token"))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/reservations/1/handover-token", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.MintHandoverToken(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mintTestToken(t *testing.T, reservationID uint64) string {
	t.Helper()
	token, err := utils.NewHandoverToken(testCfg.HandoverSecret, utils.HandoverClaims{
		ReservationID: reservationID,
		CustomerName:  "Nina Bauer",
		CustomerEmail: "nina@example.com",
		Vehicle:       "2021 Audi A6",
		StartDate:     "2024-05-01",
		EndDate:       "2024-05-03",
	}, fixedClock())
	require.NoError(t, err)
	return token
}

func TestCollectRedeemsToken(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	token := mintTestToken(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, vehicle_id, customer_id").
		WithArgs(uint64(1)).
		WillReturnRows(reservationRow(1, 3, 9, "2000.00", "VERIFIED", token))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status IN (?)`)).
		WithArgs("COLLECTED", uint64(1), "VERIFIED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/collect", `{"token":"`+token+`"}`)

	require.NoError(t, h.Collect(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "COLLECTED", body["status"])
	assert.Equal(t, "Nina Bauer", body["customer_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectRejectsForgedToken(t *testing.T) {
	h, _, db := newOperatorHandler(t)
	defer db.Close()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/collect", `{"token":"not-a-real-token"}`)

	require.NoError(t, h.Collect(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A valid signature is not enough: the presented token must match the
// copy stored when it was minted, so a superseded token is refused.
func TestCollectStoredTokenMismatch(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	presented := mintTestToken(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, vehicle_id, customer_id").
		WithArgs(uint64(1)).
		WillReturnRows(reservationRow(1, 3, 9, "2000.00", "VERIFIED", "a-different-stored-token"))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/collect", `{"token":"`+presented+`"}`)

	require.NoError(t, h.Collect(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectTwiceConflict(t *testing.T) {
	h, mock, db := newOperatorHandler(t)
	defer db.Close()

	token := mintTestToken(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, vehicle_id, customer_id").
		WithArgs(uint64(1)).
		WillReturnRows(reservationRow(1, 3, 9, "2000.00", "COLLECTED", token))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status IN (?)`)).
		WithArgs("COLLECTED", uint64(1), "VERIFIED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM reservations WHERE id = ?`)).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/v1/admin/collect", `{"token":"`+token+`"}`)

	require.NoError(t, h.Collect(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
