package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/a6cars/rental-api/internal/model"
)

// ReservationRepo owns the reservations table and is the only component
// allowed to change a reservation's status.  Every lifecycle step funnels
// through TransitionTx, which performs a status-guarded UPDATE so that
// concurrent requests racing for the same transition resolve to exactly
// one winner.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span this repository and the payment intent repository.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// reservationCols is the column list shared by every reservation SELECT.
const reservationCols = `id, vehicle_id, customer_id, start_date, end_date, amount, status, handover_token, created_at, updated_at`

// CreateTx inserts a new reservation in status BOOKED within the scope of
// an existing transaction.  It populates the generated ID and timestamps
// on the provided record.  The caller must commit or rollback the
// transaction; nothing is visible until commit, which is what makes
// reservation creation safe to retry after a failed attempt.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
    const q = `INSERT INTO reservations (vehicle_id, customer_id, start_date, end_date, amount, status) VALUES (?, ?, ?, ?, ?, ?)`
    res.Status = model.StatusBooked
    result, err := tx.ExecContext(ctx, q,
        res.VehicleID, res.CustomerID,
        res.StartDate.UTC(), res.EndDate.UTC(),
        res.Amount.StringFixed(2), string(res.Status))
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults
    row := tx.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id = ?`, res.ID)
    got, err := scanReservation(row)
    if err != nil {
        return err
    }
    *res = *got
    return nil
}

// GetByID returns a reservation by primary key.  sql.ErrNoRows is
// returned when it does not exist.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
    return scanReservation(row)
}

// GetForUpdateTx loads a reservation inside a transaction with a row lock
// so that the subsequent guarded transition and any dependent writes (a
// payment intent row, a token payload) observe a stable state.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id = ? FOR UPDATE`, id)
    return scanReservation(row)
}

// TransitionPatch carries the optional column writes applied together
// with a status change.  Nil fields are left untouched.
type TransitionPatch struct {
    HandoverToken *string
}

// TransitionTx moves a reservation from one of the allowed source states
// to the target state, applying the patch in the same statement.  The
// guard runs inside the UPDATE itself: when the current status is not in
// fromAllowed the statement matches zero rows and ErrInvalidTransition is
// returned with the record unchanged.  sql.ErrNoRows is returned when the
// reservation does not exist at all.
func (r *ReservationRepo) TransitionTx(ctx context.Context, tx *sql.Tx, id uint64, fromAllowed []model.Status, to model.Status, patch *TransitionPatch) error {
    if len(fromAllowed) == 0 {
        return ErrInvalidTransition
    }
    for _, from := range fromAllowed {
        if !from.CanTransition(to) {
            return ErrInvalidTransition
        }
    }

    set := []string{"status = ?", "updated_at = UTC_TIMESTAMP()"}
    args := []interface{}{string(to)}
    if patch != nil && patch.HandoverToken != nil {
        set = append(set, "handover_token = ?")
        args = append(args, *patch.HandoverToken)
    }
    args = append(args, id)
    placeholders := make([]string, len(fromAllowed))
    for i, from := range fromAllowed {
        placeholders[i] = "?"
        args = append(args, string(from))
    }
    query := `UPDATE reservations SET ` + strings.Join(set, ", ") +
        ` WHERE id = ? AND status IN (` + strings.Join(placeholders, ",") + `)`

    res, err := tx.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a missing row from a guard failure
        var one int
        err := tx.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&one)
        if err != nil {
            return err // sql.ErrNoRows when the reservation is absent
        }
        return ErrInvalidTransition
    }
    return nil
}

// ReservationDetail pairs a reservation with its vehicle descriptor for
// customer-facing listings.
type ReservationDetail struct {
    ID            uint64  `json:"id"`
    VehicleID     uint64  `json:"vehicle_id"`
    Vehicle       string  `json:"vehicle"`
    StartDate     string  `json:"start_date"`
    EndDate       string  `json:"end_date"`
    Amount        string  `json:"amount"`
    Status        string  `json:"status"`
    HandoverToken *string `json:"handover_token,omitempty"`
}

// OperatorReservationDetail extends ReservationDetail with the customer's
// identity and contact details for operator listings.
type OperatorReservationDetail struct {
    ReservationDetail
    CustomerID    uint64 `json:"customer_id"`
    CustomerName  string `json:"customer_name"`
    CustomerEmail string `json:"customer_email"`
}

const detailQ = `SELECT r.id, r.vehicle_id, CONCAT(v.year, ' ', v.brand, ' ', v.model),
                        r.start_date, r.end_date, r.amount, r.status, r.handover_token
                 FROM reservations r
                 JOIN vehicles v ON v.id = r.vehicle_id`

// ListByCustomer returns all reservations for the given customer, newest
// first.  When none exist, an empty slice is returned.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]ReservationDetail, error) {
    rows, err := r.db.QueryContext(ctx, detailQ+` WHERE r.customer_id = ? ORDER BY r.created_at DESC`, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ReservationDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, err
        }
        details = append(details, *d)
    }
    return details, rows.Err()
}

// GetDetailForCustomer returns a single reservation with its vehicle
// descriptor, restricted to the owning customer.  sql.ErrNoRows is
// returned when the reservation does not exist or belongs to someone
// else; ownership is enforced in the query, matching the not-found
// response so reservation ids are not probeable.
func (r *ReservationRepo) GetDetailForCustomer(ctx context.Context, reservationID, customerID uint64) (*ReservationDetail, error) {
    row := r.db.QueryRowContext(ctx, detailQ+` WHERE r.id = ? AND r.customer_id = ?`, reservationID, customerID)
    return scanDetail(row)
}

// ListAll returns every reservation with customer contact details for the
// operator dashboard, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]OperatorReservationDetail, error) {
    const q = `SELECT r.id, r.vehicle_id, CONCAT(v.year, ' ', v.brand, ' ', v.model),
                      r.start_date, r.end_date, r.amount, r.status, r.handover_token,
                      c.id, c.name, c.email
               FROM reservations r
               JOIN vehicles v ON v.id = r.vehicle_id
               JOIN customers c ON c.id = r.customer_id
               ORDER BY r.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]OperatorReservationDetail, 0)
    for rows.Next() {
        var d OperatorReservationDetail
        var start, end time.Time
        var token sql.NullString
        if err := rows.Scan(
            &d.ID, &d.VehicleID, &d.Vehicle,
            &start, &end, &d.Amount, &d.Status, &token,
            &d.CustomerID, &d.CustomerName, &d.CustomerEmail,
        ); err != nil {
            return nil, err
        }
        d.StartDate = start.UTC().Format("2006-01-02")
        d.EndDate = end.UTC().Format("2006-01-02")
        if token.Valid {
            t := token.String
            d.HandoverToken = &t
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

// HandoverData bundles the display fields embedded into a handover token.
type HandoverData struct {
    Reservation   model.Reservation
    CustomerName  string
    CustomerEmail string
    Vehicle       string
}

// GetHandoverDataTx loads a reservation together with the customer and
// vehicle display fields inside a transaction, locking the reservation
// row for the duration of the token mint.
func (r *ReservationRepo) GetHandoverDataTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*HandoverData, error) {
    const q = `SELECT r.id, r.vehicle_id, r.customer_id, r.start_date, r.end_date, r.amount, r.status, r.handover_token, r.created_at, r.updated_at,
                      c.name, c.email,
                      CONCAT(v.year, ' ', v.brand, ' ', v.model)
               FROM reservations r
               JOIN customers c ON c.id = r.customer_id
               JOIN vehicles v ON v.id = r.vehicle_id
               WHERE r.id = ?
               FOR UPDATE`
    var (
        hd        HandoverData
        amountStr string
        statusStr string
        token     sql.NullString
    )
    err := tx.QueryRowContext(ctx, q, reservationID).Scan(
        &hd.Reservation.ID, &hd.Reservation.VehicleID, &hd.Reservation.CustomerID,
        &hd.Reservation.StartDate, &hd.Reservation.EndDate,
        &amountStr, &statusStr, &token,
        &hd.Reservation.CreatedAt, &hd.Reservation.UpdatedAt,
        &hd.CustomerName, &hd.CustomerEmail, &hd.Vehicle,
    )
    if err != nil {
        return nil, err
    }
    amount, err := decimal.NewFromString(amountStr)
    if err != nil {
        return nil, err
    }
    hd.Reservation.Amount = amount
    hd.Reservation.Status = model.Status(statusStr)
    if token.Valid {
        t := token.String
        hd.Reservation.HandoverToken = &t
    }
    return &hd, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
    var (
        res       model.Reservation
        amountStr string
        statusStr string
        token     sql.NullString
    )
    err := row.Scan(
        &res.ID, &res.VehicleID, &res.CustomerID,
        &res.StartDate, &res.EndDate,
        &amountStr, &statusStr, &token,
        &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    amount, err := decimal.NewFromString(amountStr)
    if err != nil {
        return nil, err
    }
    res.Amount = amount
    res.Status = model.Status(statusStr)
    if token.Valid {
        t := token.String
        res.HandoverToken = &t
    }
    return &res, nil
}

func scanDetail(row rowScanner) (*ReservationDetail, error) {
    var (
        d          ReservationDetail
        start, end time.Time
        token      sql.NullString
    )
    err := row.Scan(&d.ID, &d.VehicleID, &d.Vehicle, &start, &end, &d.Amount, &d.Status, &token)
    if err != nil {
        return nil, err
    }
    d.StartDate = start.UTC().Format("2006-01-02")
    d.EndDate = end.UTC().Format("2006-01-02")
    if token.Valid {
        t := token.String
        d.HandoverToken = &t
    }
    return &d, nil
}
