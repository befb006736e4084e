package handler // handler defines http handlers

import (
    "context"  // request-scoped timeouts for DB calls
    "net/http" // cookie construction and status codes
    "strconv"  // path parameter and id conversion
    "time"     // timeout durations and cookie expiry

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/kasistays/kasistays/internal/config"     // cookie name constant
    "github.com/kasistays/kasistays/internal/repository" // repository holds data access layer
    "github.com/kasistays/kasistays/internal/utils"      // session claims type
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// reqContext derives a context with the standard DB timeout from the
// incoming request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a numeric path parameter. The wire carries all ids as
// strings; internally they are uint64 keys.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// fmtID renders an internal id in its wire form.
func fmtID(id uint64) string { return strconv.FormatUint(id, 10) }

// profileResp is the identity shape returned by all auth endpoints. The
// frontend field name for the id is uid.
type profileResp struct {
    UID        string `json:"uid"`
    Email      string `json:"email"`
    Role       string `json:"role"`
    IsVerified bool   `json:"isVerified"`
}

func profileFromClaims(cl utils.SessionClaims) profileResp {
    return profileResp{UID: fmtID(cl.UserID), Email: cl.Email, Role: cl.Role, IsVerified: cl.Verified}
}

// setSessionCookie attaches the signed session token as an HTTP-only,
// SameSite=Lax cookie. Secure is enabled outside dev so the cookie only
// travels over TLS in production.
func setSessionCookie(c echo.Context, env string, tok utils.SessionToken) {
    c.SetCookie(&http.Cookie{
        Name:     config.SessionCookieName,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
        Secure:   env == "prod",
    })
}

// clearSessionCookie tells the client to stop presenting its token. The
// server keeps no session state, so this is the entirety of sign-out.
func clearSessionCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     config.SessionCookieName,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}

// listingResp is the wire shape of a listing shared by the public catalog
// and the admin list. isVerified is the landlord's flag surfaced on the
// listing at read time.
type listingResp struct {
    ID             string  `json:"id"`
    LandlordID     string  `json:"landlordId"`
    Title          string  `json:"title"`
    Price          float64 `json:"price"`
    ImageURL       string  `json:"imageUrl"`
    Location       string  `json:"location"`
    IsVerified     bool    `json:"isVerified"`
    IsActive       bool    `json:"isActive"`
    GPSCoordinates struct {
        Lat float64 `json:"lat"`
        Lng float64 `json:"lng"`
    } `json:"gpsCoordinates"`
}

func mapListings(views []repository.ListingView) []listingResp {
    out := make([]listingResp, 0, len(views))
    for _, v := range views {
        lr := listingResp{
            ID:         fmtID(v.ID),
            LandlordID: fmtID(v.LandlordID),
            Title:      v.Title,
            Price:      v.PricePerMonth,
            ImageURL:   v.ImageURL,
            Location:   v.Location,
            IsVerified: v.LandlordVerified,
            IsActive:   v.IsActive,
        }
        lr.GPSCoordinates.Lat = v.GPSLat
        lr.GPSCoordinates.Lng = v.GPSLng
        out = append(out, lr)
    }
    return out
}
