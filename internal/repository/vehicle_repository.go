package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/a6cars/rental-api/internal/model"
)

// VehicleRepo provides CRUD operations for the vehicle catalog.  The
// booking lifecycle only reads from it; catalog writes are an operator
// concern exposed through the admin endpoints.
type VehicleRepo struct {
    db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

const vehicleCols = `id, brand, model, year, day_rate, location, image_url, is_active, created_at, updated_at`

// Create inserts a new vehicle and returns its ID.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) (uint64, error) {
    const q = `INSERT INTO vehicles (brand, model, year, day_rate, location, image_url, is_active) VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        v.Brand, v.Model, v.Year, v.DayRate.StringFixed(2), v.Location, v.ImageURL, v.IsActive)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    v.ID = uint64(id)
    return v.ID, nil
}

// GetByID returns a vehicle by primary key; sql.ErrNoRows when absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+vehicleCols+` FROM vehicles WHERE id = ?`, id)
    return scanVehicle(row)
}

// GetDayRateTx looks up the day rate of an active vehicle inside the
// reservation-creation transaction.  ErrVehicleNotFound is returned when
// the vehicle is absent or deactivated, so a half-created reservation can
// never reference a vehicle that cannot be rented.
func (r *VehicleRepo) GetDayRateTx(ctx context.Context, tx *sql.Tx, id uint64) (decimal.Decimal, error) {
    var rateStr string
    err := tx.QueryRowContext(ctx,
        `SELECT day_rate FROM vehicles WHERE id = ? AND is_active = 1`, id).Scan(&rateStr)
    if err != nil {
        if err == sql.ErrNoRows {
            return decimal.Zero, ErrVehicleNotFound
        }
        return decimal.Zero, err
    }
    return decimal.NewFromString(rateStr)
}

// List returns catalog vehicles, optionally filtered to active ones.
func (r *VehicleRepo) List(ctx context.Context, activeOnly bool) ([]model.Vehicle, error) {
    q := `SELECT ` + vehicleCols + ` FROM vehicles`
    if activeOnly {
        q += ` WHERE is_active = 1`
    }
    q += ` ORDER BY brand, model, year`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Vehicle, 0)
    for rows.Next() {
        v, err := scanVehicle(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *v)
    }
    return out, rows.Err()
}

// Update modifies the mutable catalog fields of a vehicle.  sql.ErrNoRows
// is returned when the vehicle does not exist.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
    const q = `UPDATE vehicles SET brand = ?, model = ?, year = ?, day_rate = ?, location = ?, image_url = ?, is_active = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        v.Brand, v.Model, v.Year, v.DayRate.StringFixed(2), v.Location, v.ImageURL, v.IsActive, v.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // either absent or unchanged; verify existence
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM vehicles WHERE id = ?`, v.ID).Scan(&one); err != nil {
            return err
        }
    }
    return nil
}

// Deactivate soft-deletes a vehicle by clearing its is_active flag.
// Reservations keep their foreign reference, so the booking history stays
// intact.
func (r *VehicleRepo) Deactivate(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE vehicles SET is_active = 0, updated_at = UTC_TIMESTAMP() WHERE id = ? AND is_active = 1`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM vehicles WHERE id = ?`, id).Scan(&one); err != nil {
            return err
        }
    }
    return nil
}

func scanVehicle(row rowScanner) (*model.Vehicle, error) {
    var (
        v        model.Vehicle
        rateStr  string
        imageURL sql.NullString
    )
    err := row.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &rateStr, &v.Location, &imageURL, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
    if err != nil {
        return nil, err
    }
    rate, err := decimal.NewFromString(strings.TrimSpace(rateStr))
    if err != nil {
        return nil, err
    }
    v.DayRate = rate
    if imageURL.Valid {
        u := imageURL.String
        v.ImageURL = &u
    }
    return &v, nil
}
