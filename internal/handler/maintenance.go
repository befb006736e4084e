package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/middleware"
	"github.com/kasistays/kasistays/internal/model"
	"github.com/kasistays/kasistays/internal/repository"
)

// MaintenanceHandler serves the maintenance request tracker.
type MaintenanceHandler struct {
	Requests *repository.MaintenanceRepo
}

func NewMaintenanceHandler(m *repository.MaintenanceRepo) *MaintenanceHandler {
	if m == nil {
		panic("nil repository passed to NewMaintenanceHandler")
	}
	return &MaintenanceHandler{Requests: m}
}

type maintenanceResp struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	Issue     string    `json:"issue"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func mapRequests(rows []repository.RequestRow) []maintenanceResp {
	out := make([]maintenanceResp, 0, len(rows))
	for _, m := range rows {
		out = append(out, maintenanceResp{
			ID: fmtID(m.ID), ListingID: fmtID(m.ListingID),
			Issue: m.Issue, Status: m.Status, CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// ListRequests handles GET /api/maintenance-requests. Students see
// requests they authored, landlords see requests they received; any other
// role gets an empty array.
func (h *MaintenanceHandler) ListRequests(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	switch claims.Role {
	case model.RoleStudent:
		rows, err := h.Requests.ListForStudent(ctx, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch maintenance requests."})
		}
		return c.JSON(http.StatusOK, mapRequests(rows))
	case model.RoleLandlord:
		rows, err := h.Requests.ListForLandlord(ctx, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch maintenance requests."})
		}
		return c.JSON(http.StatusOK, mapRequests(rows))
	default:
		return c.JSON(http.StatusOK, []struct{}{})
	}
}

type createMaintenanceReq struct {
	ListingID string `json:"listingId"`
	Issue     string `json:"issue"`
}

// CreateRequest handles POST /api/maintenance-requests (student only).
// The student must hold a confirmed booking on the listing; pending or
// declined bookings are not enough and yield the same 404 as no booking
// at all.
func (h *MaintenanceHandler) CreateRequest(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	var req createMaintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Issue = strings.TrimSpace(req.Issue)
	if req.ListingID == "" || req.Issue == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Listing ID and issue description are required."})
	}
	listingID, err := strconv.ParseUint(req.ListingID, 10, 64)
	if err != nil || listingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid listing id."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, err := h.Requests.Create(ctx, claims.UserID, listingID, req.Issue)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found for this student and listing."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create request."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": fmtID(id), "message": "Maintenance request created."})
}

type updateMaintenanceReq struct {
	Status string `json:"status"`
}

// UpdateRequest handles PUT /api/maintenance-requests/:id (landlord only).
// Any of the three statuses may be set at any time; there is no forward-
// only policy and no lock after Resolved.
func (h *MaintenanceHandler) UpdateRequest(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request id."})
	}
	var req updateMaintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if !model.ValidMaintenanceStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status value."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Requests.UpdateStatus(ctx, requestID, claims.UserID, req.Status); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Permission denied."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update request."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Status updated."})
}
