package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/repository"
)

// AdminHandler serves the oversight dashboard. Every route here sits
// behind RequireRole("admin") in the router.
type AdminHandler struct {
	Users    *repository.UserRepo
	Listings *repository.ListingRepo
}

func NewAdminHandler(u *repository.UserRepo, l *repository.ListingRepo) *AdminHandler {
	if u == nil || l == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Listings: l}
}

type adminUserResp struct {
	UID        string    `json:"uid"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetUsers handles GET /api/admin/users.
func (h *AdminHandler) GetUsers(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch users."})
	}
	out := make([]adminUserResp, 0, len(rows))
	for _, u := range rows {
		out = append(out, adminUserResp{
			UID: fmtID(u.ID), Email: u.Email, Role: u.Role,
			IsVerified: u.IsVerified, CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type setVerifiedReq struct {
	IsVerified *bool `json:"isVerified"`
}

// VerifyUser handles PUT /api/admin/users/:id/verify. The flag can be
// granted and revoked; listings pick the change up immediately because the
// badge is joined in at read time.
func (h *AdminHandler) VerifyUser(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid user id."})
	}
	var req setVerifiedReq
	if err := c.Bind(&req); err != nil || req.IsVerified == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "isVerified is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.SetVerified(ctx, userID, *req.IsVerified); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update user."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification status updated."})
}

// GetAllListings handles GET /api/admin/listings, returning active and
// inactive listings alike.
func (h *AdminHandler) GetAllListings(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	views, err := h.Listings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch listings."})
	}
	return c.JSON(http.StatusOK, mapListings(views))
}

type setActiveReq struct {
	IsActive *bool `json:"isActive"`
}

// SetListingActive handles PUT /api/admin/listings/:id/status. Admins use
// it both to take a listing down and to restore one a confirmed booking
// deactivated.
func (h *AdminHandler) SetListingActive(c echo.Context) error {
	listingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid listing id."})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "isActive is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Listings.SetActive(ctx, listingID, *req.IsActive); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Listing not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update listing."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Listing updated."})
}
