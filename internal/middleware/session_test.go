package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasistays/kasistays/internal/config"
	"github.com/kasistays/kasistays/internal/utils"
)

const testSecret = "middleware-test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, cookie *http.Cookie, final echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := final
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func sessionCookie(t *testing.T, claims utils.SessionClaims) *http.Cookie {
	t.Helper()
	tok, err := utils.NewSessionToken(testSecret, claims, 1)
	require.NoError(t, err)
	return &http.Cookie{Name: config.SessionCookieName, Value: tok.Token}
}

func TestSessionAuthDecodesValidCookie(t *testing.T) {
	claims := utils.SessionClaims{UserID: 42, Email: "s@example.com", Role: "student", Verified: true}

	doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret)}, sessionCookie(t, claims),
		func(c echo.Context) error {
			got, ok := CurrentUser(c)
			assert.True(t, ok)
			assert.Equal(t, claims, got)
			return c.NoContent(http.StatusOK)
		})
}

// A bad cookie must not abort the request; it degrades to a guest and the
// client is told to drop the cookie.
func TestSessionAuthInvalidCookieIsGuest(t *testing.T) {
	bad := &http.Cookie{Name: config.SessionCookieName, Value: "tampered"}

	rec := doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret)}, bad,
		func(c echo.Context) error {
			_, ok := CurrentUser(c)
			assert.False(t, ok)
			return c.NoContent(http.StatusOK)
		})

	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == config.SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "invalid cookie should be cleared")
}

func TestSessionAuthNoCookieIsGuest(t *testing.T) {
	doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret)}, nil,
		func(c echo.Context) error {
			_, ok := CurrentUser(c)
			assert.False(t, ok)
			return c.NoContent(http.StatusOK)
		})
}

func TestRequireAuthRejectsGuest(t *testing.T) {
	rec := doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret), RequireAuth()}, nil,
		func(c echo.Context) error {
			t.Fatal("handler must not run for guests")
			return nil
		})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	student := sessionCookie(t, utils.SessionClaims{UserID: 3, Email: "s@example.com", Role: "student"})

	// Matching role passes through.
	rec := doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret), RequireRole("student")}, student,
		func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong role is a 403, not a 401.
	rec = doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret), RequireRole("landlord")}, student,
		func(c echo.Context) error {
			t.Fatal("handler must not run for the wrong role")
			return nil
		})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Guests are rejected the same way.
	rec = doRequest(t, []echo.MiddlewareFunc{SessionAuth(testSecret), RequireRole("landlord")}, nil,
		func(c echo.Context) error {
			t.Fatal("handler must not run for guests")
			return nil
		})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
