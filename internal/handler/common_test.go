package handler

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/middleware"
)

// errDup1062 mimics the mysql driver's duplicate-key error text.
func errDup1062() error {
	return errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'users.email'")
}

// userRow builds the full users projection selected by GetByEmail/GetByID.
func userRow(id int64, email, hash, role string, verified bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "is_verified", "profile_image_url", "created_at",
	}).AddRow(id, email, hash, role, verified, nil, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
}

// authedContext builds an echo context carrying decoded session claims, the
// way SessionAuth leaves them for handlers.
func authedContext(t *testing.T, method, path, body string, userID uint64, email, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxEmail, email)
	c.Set(middleware.CtxRole, role)
	c.Set(middleware.CtxVerified, false)
	return c, rec
}
