package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/middleware"
	"github.com/kasistays/kasistays/internal/model"
	"github.com/kasistays/kasistays/internal/queue"
	"github.com/kasistays/kasistays/internal/repository"
	"github.com/kasistays/kasistays/internal/service"
)

// BookingHandler serves the booking request/decision workflow. The
// race-sensitive parts (one live request per student+listing, single
// confirmed winner per listing) live in the repository's transactions;
// handlers only validate input and map sentinel errors onto the HTTP
// contract.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewBookingHandler(b *repository.BookingRepo) *BookingHandler {
	if b == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b}
}

// BookListing handles POST /api/listings/:id/book (student only). 404 when
// the listing is absent, 400 when it has been deactivated, 409 when the
// student already has a live request on it.
func (h *BookingHandler) BookListing(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid listing id."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, err := h.Bookings.Create(ctx, listingID, claims.UserID)
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Listing not found."})
		case repository.ErrListingUnavailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "This listing is no longer available."})
		case repository.ErrDuplicateBooking:
			return c.JSON(http.StatusConflict, echo.Map{"message": "You have already sent a booking request for this listing."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create booking request."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": fmtID(id), "message": "Booking request sent."})
}

type decideBookingReq struct {
	Status string `json:"status"` // confirmed | declined
}

// DecideBooking handles PUT /api/bookings/:id/status (landlord only).
// Not-found and not-yours are reported with the same 404 so the endpoint
// cannot be probed for other landlords' booking ids. When the decision is
// confirmed, the repository atomically declines every rival pending
// request and deactivates the listing, and a booking.confirmed event is
// published once the transaction has committed.
func (h *BookingHandler) DecideBooking(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid booking id."})
	}
	var req decideBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidDecision(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status provided."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Bookings.Decide(ctx, bookingID, claims.UserID, req.Status)
	if err != nil {
		if err == repository.ErrNotActionable {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found or you do not have permission to modify it."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update booking status."})
	}

	if req.Status == model.BookingConfirmed {
		// Fire-and-forget after commit; a broker outage must not fail the
		// landlord's request. The publisher logs its own errors.
		ev := queue.BookingConfirmedEvent{
			BookingID:    res.BookingID,
			ListingID:    res.ListingID,
			ListingTitle: res.ListingTitle,
			StudentID:    res.StudentID,
			LandlordID:   res.LandlordID,
			ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pcancel()
			_ = service.PublishBookingConfirmed(pctx, ev)
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Booking has been " + req.Status + "."})
}

type studentBookingResp struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ListingID    string    `json:"listingId"`
	ListingTitle string    `json:"listingTitle"`
}

type landlordBookingResp struct {
	studentBookingResp
	StudentEmail string `json:"studentEmail"`
}

// ListBookings handles GET /api/bookings. Students see their own requests,
// landlords see requests against their listings; any other role gets an
// empty array.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	switch claims.Role {
	case model.RoleStudent:
		rows, err := h.Bookings.ListForStudent(ctx, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings."})
		}
		out := make([]studentBookingResp, 0, len(rows))
		for _, b := range rows {
			out = append(out, studentBookingResp{
				ID: fmtID(b.ID), Status: b.Status, CreatedAt: b.CreatedAt,
				ListingID: fmtID(b.ListingID), ListingTitle: b.ListingTitle,
			})
		}
		return c.JSON(http.StatusOK, out)
	case model.RoleLandlord:
		rows, err := h.Bookings.ListForLandlord(ctx, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings."})
		}
		out := make([]landlordBookingResp, 0, len(rows))
		for _, b := range rows {
			out = append(out, landlordBookingResp{
				studentBookingResp: studentBookingResp{
					ID: fmtID(b.ID), Status: b.Status, CreatedAt: b.CreatedAt,
					ListingID: fmtID(b.ListingID), ListingTitle: b.ListingTitle,
				},
				StudentEmail: b.StudentEmail,
			})
		}
		return c.JSON(http.StatusOK, out)
	default:
		return c.JSON(http.StatusOK, []struct{}{})
	}
}
