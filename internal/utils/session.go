package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel error for invalid tokens
    "strconv" // numeric claim conversion
    "time"    // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionClaims is the identity carried by the session cookie.  The server
// keeps no session table; every request re-derives the current user from
// these signed claims alone.  Verified is a snapshot taken at issue time
// and refreshes on the next sign-in after an admin toggles the flag.
type SessionClaims struct {
    UserID   uint64 // subject (users.id)
    Email    string // email claim
    Role     string // role claim (student/landlord/provider/admin)
    Verified bool   // verified claim
}

// SessionToken bundles a signed token string with its expiry so callers
// can set the cookie max-age consistently with the JWT exp claim.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ErrInvalidSession is returned by ParseSessionToken for any token that is
// missing, malformed, expired or signed with the wrong key.  Callers treat
// all of these identically (the request proceeds as a guest).
var ErrInvalidSession = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT encoding the given claims
// with a fixed TTL in hours.  The JWT includes sub, email, role, verified,
// exp and iat.
func NewSessionToken(secret string, claims SessionClaims, ttlHours int) (SessionToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
    mc := jwt.MapClaims{
        "sub":      claims.UserID,
        "email":    claims.Email,
        "role":     claims.Role,
        "verified": claims.Verified,
        "exp":      exp.Unix(),
        "iat":      time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates a raw token string and extracts the session
// claims.  It enforces the HMAC signing method and the standard expiry
// check performed by the jwt library.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSession
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidSession
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrInvalidSession
    }
    var out SessionClaims
    // sub is serialized as a JSON number; accept a numeric string as well
    // since jwt.MapClaims round-trips through interface{}.
    switch v := mc["sub"].(type) {
    case float64:
        out.UserID = uint64(v)
    case string:
        n, perr := strconv.ParseUint(v, 10, 64)
        if perr != nil {
            return SessionClaims{}, ErrInvalidSession
        }
        out.UserID = n
    default:
        return SessionClaims{}, ErrInvalidSession
    }
    if out.UserID == 0 {
        return SessionClaims{}, ErrInvalidSession
    }
    if s, ok := mc["email"].(string); ok {
        out.Email = s
    }
    if s, ok := mc["role"].(string); ok {
        out.Role = s
    }
    if b, ok := mc["verified"].(bool); ok {
        out.Verified = b
    }
    if out.Role == "" {
        return SessionClaims{}, ErrInvalidSession
    }
    return out, nil
}
