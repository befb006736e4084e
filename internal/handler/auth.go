package handler

import (
    "database/sql"         // sentinel errors returned from repository
    "net/http"             // HTTP status codes and primitives
    "strings"              // input normalization

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/kasistays/kasistays/internal/config"     // app configuration
    "github.com/kasistays/kasistays/internal/middleware" // session decoding helpers
    "github.com/kasistays/kasistays/internal/model"      // role constants
    "github.com/kasistays/kasistays/internal/repository" // DB repositories
    "github.com/kasistays/kasistays/internal/utils"      // hashing and session tokens
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // student | landlord | provider
}
type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type landlordSignupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	IDNumber string `json:"idNumber"`
}

// SignUp creates a user, issues the session cookie immediately and returns
// the new profile. 409 when the email is already registered.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email, password, and role are required."})
	}
	if !model.ValidSignupRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already in use."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Database error during sign up."})
	}

	claims := utils.SessionClaims{UserID: uid, Email: req.Email, Role: req.Role, Verified: false}
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, claims, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue session."})
	}
	setSessionCookie(c, h.Cfg.Env, tok)
	return c.JSON(http.StatusCreated, profileFromClaims(claims))
}

// LandlordSignUp registers a landlord together with the identity details
// collected by the landlord onboarding form. User and profile rows commit
// in one transaction inside the repository.
func (h *AuthHandler) LandlordSignUp(c echo.Context) error {
	var req landlordSignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.Phone == "" || req.IDNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	profile := model.LandlordProfile{FullName: req.FullName, Phone: req.Phone, IDNumber: req.IDNumber}
	uid, err := h.Users.CreateLandlord(ctx, req.Email, req.Password, profile, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A user with this email already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to register landlord."})
	}

	claims := utils.SessionClaims{UserID: uid, Email: req.Email, Role: model.RoleLandlord, Verified: false}
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, claims, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue session."})
	}
	setSessionCookie(c, h.Cfg.Env, tok)
	return c.JSON(http.StatusCreated, profileFromClaims(claims))
}

// SignIn verifies credentials and issues a fresh session cookie carrying
// the user's current role and verified flag.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			// Unknown email and wrong password are reported identically.
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during sign in."})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
	}

	claims := utils.SessionClaims{UserID: u.ID, Email: u.Email, Role: u.Role, Verified: u.IsVerified}
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, claims, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue session."})
	}
	setSessionCookie(c, h.Cfg.Env, tok)
	return c.JSON(http.StatusOK, profileFromClaims(claims))
}

// SignOut clears the session cookie. Because sessions are stateless
// client-held claims, invalidation is simply telling the client to stop
// presenting the token.
func (h *AuthHandler) SignOut(c echo.Context) error {
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Signed out successfully."})
}

// Me returns the identity encoded in the currently presented credential,
// or a 401 with a null body when no valid session exists.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, nil)
	}
	return c.JSON(http.StatusOK, profileFromClaims(claims))
}
