package model

import "time"

// Customer represents an account record as stored in the `customers`
// table.  The json tags are omitted because these structs are used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the customer.
//  Name         – display name, embedded in handover tokens.
//  Email        – unique email address.
//  Phone        – contact phone number.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Customer struct {
    ID           uint64    // customers.id
    Name         string    // customers.name
    Email        string    // customers.email
    Phone        string    // customers.phone
    PasswordHash string    // customers.password_hash
    IsActive     bool      // customers.is_active
    CreatedAt    time.Time // customers.created_at
    UpdatedAt    time.Time // customers.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a customer; only the SHA-256 hash of the raw
// token value is stored.
//
// Fields:
//  ID         – primary key identifier.
//  CustomerID – owner of the token.
//  TokenHash  – SHA-256 hex digest of the token value.
//  ExpiresAt  – expiration timestamp of the token.
//  RevokedAt  – when the token was revoked (null if still active).
//  CreatedAt  – timestamp of creation.
type RefreshToken struct {
    ID         uint64     // refresh_tokens.id
    CustomerID uint64     // refresh_tokens.customer_id
    TokenHash  string     // refresh_tokens.token_hash
    ExpiresAt  time.Time  // refresh_tokens.expires_at
    RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt  time.Time  // refresh_tokens.created_at
}
