package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireAuth aborts the request with 401 when no valid session has been
// decoded by SessionAuth.  Use it for endpoints that accept any signed-in
// role (inbox, bookings list, maintenance list).
func RequireAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := CurrentUser(c); !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
            }
            return next(c)
        }
    }
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  The roles accepted
// correspond to the values stored in the session's "role" claim.  An
// unauthenticated request or a user whose role is not in the allowed set
// is aborted with 403 Forbidden, matching the original API which reported
// role failures as access denials rather than authentication failures.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get(CtxRole)
            role, ok := v.(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied."})
            }
            return next(c)
        }
    }
}
