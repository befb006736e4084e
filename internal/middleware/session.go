package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // cookie construction for clearing invalid sessions

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/kasistays/kasistays/internal/config" // cookie name constant
    "github.com/kasistays/kasistays/internal/utils"  // session token parsing
)

// Context keys under which the decoded session is stored.  Handlers and
// downstream middleware read these via c.Get().
const (
    CtxUserID   = "user_id"
    CtxEmail    = "email"
    CtxRole     = "role"
    CtxVerified = "verified"
)

// SessionAuth returns an Echo middleware that decodes the session cookie
// into the request context.  It is deliberately soft: a missing or invalid
// cookie does not abort the request, it just leaves the context without a
// user so the request proceeds as a guest.  Role-gated routes layer
// RequireRole (or a handler-side CurrentUser check) on top.  An invalid
// cookie is cleared so the client stops presenting it.
func SessionAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(config.SessionCookieName)
            if err != nil || ck.Value == "" {
                return next(c)
            }
            claims, err := utils.ParseSessionToken(secret, ck.Value)
            if err != nil {
                // Expired or tampered token: tell the client to drop it.
                c.SetCookie(&http.Cookie{
                    Name:     config.SessionCookieName,
                    Value:    "",
                    Path:     "/",
                    MaxAge:   -1,
                    HttpOnly: true,
                })
                return next(c)
            }
            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxEmail, claims.Email)
            c.Set(CtxRole, claims.Role)
            c.Set(CtxVerified, claims.Verified)
            return next(c)
        }
    }
}

// CurrentUser extracts the decoded session claims from the context.  The
// second return value is false when the request is unauthenticated.
func CurrentUser(c echo.Context) (utils.SessionClaims, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    if !ok || id == 0 {
        return utils.SessionClaims{}, false
    }
    claims := utils.SessionClaims{UserID: id}
    if s, ok := c.Get(CtxEmail).(string); ok {
        claims.Email = s
    }
    if s, ok := c.Get(CtxRole).(string); ok {
        claims.Role = s
    }
    if b, ok := c.Get(CtxVerified).(bool); ok {
        claims.Verified = b
    }
    return claims, true
}
