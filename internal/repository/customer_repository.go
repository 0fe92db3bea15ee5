package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/a6cars/rental-api/internal/model"

    "github.com/a6cars/rental-api/internal/utils"
)

// CustomerRepo provides account operations against the 'customers' table.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

var ErrEmailExists = errors.New("email already registered")

// Create inserts a customer and returns its ID.
func (r *CustomerRepo) Create(ctx context.Context, name, email, phone, password string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO customers (name, email, phone, password_hash) VALUES (?,?,?,?)",
        name, email, phone, hash)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var c model.Customer
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,name,email,phone,password_hash,is_active,created_at,updated_at FROM customers WHERE email=? LIMIT 1",
        email).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
    return c, err
}

// GetByID fetches a customer by primary key.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
    var c model.Customer
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,name,email,phone,password_hash,is_active,created_at,updated_at FROM customers WHERE id=? LIMIT 1",
        id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
    return c, err
}
