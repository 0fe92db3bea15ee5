package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a6cars/rental-api/internal/config"
	"github.com/a6cars/rental-api/internal/repository"
	"github.com/a6cars/rental-api/internal/utils"
)

func newAuthHandler(t *testing.T, cfg config.Config) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAuthHandler(cfg, repository.NewCustomerRepo(db), repository.NewTokenRepo(db)), mock, db
}

func adminConfig(t *testing.T) config.Config {
	t.Helper()
	hash, err := utils.HashPassword("operator-pass", 4)
	require.NoError(t, err)
	cfg := testCfg
	cfg.AdminEmail = "ops@a6cars.example"
	cfg.AdminPassHash = hash
	cfg.AccessTTLMin = 15
	return cfg
}

func TestAdminLoginIssuesAdminToken(t *testing.T) {
	cfg := adminConfig(t)
	h, _, db := newAuthHandler(t, cfg)
	defer db.Close()

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/admin/login",
		`{"email":"ops@a6cars.example","password":"operator-pass"}`)

	require.NoError(t, h.AdminLogin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	access := body["access"].(map[string]interface{})
	raw, _ := access["token"].(string)
	require.NotEmpty(t, raw)

	tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "ADMIN", claims["role"])
	assert.EqualValues(t, 0, claims["sub"])
}

func TestAdminLoginWrongPassword(t *testing.T) {
	h, _, db := newAuthHandler(t, adminConfig(t))
	defer db.Close()

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/admin/login",
		`{"email":"ops@a6cars.example","password":"guessing"}`)

	require.NoError(t, h.AdminLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginWrongEmail(t *testing.T) {
	h, _, db := newAuthHandler(t, adminConfig(t))
	defer db.Close()

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/admin/login",
		`{"email":"someone@else.example","password":"operator-pass"}`)

	require.NoError(t, h.AdminLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
