package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/middleware"
	"github.com/kasistays/kasistays/internal/model"
	"github.com/kasistays/kasistays/internal/repository"
)

// ListingHandler serves the public listing catalog and landlord listing
// creation.
type ListingHandler struct {
	Listings *repository.ListingRepo
}

func NewListingHandler(l *repository.ListingRepo) *ListingHandler {
	if l == nil {
		panic("nil repository passed to NewListingHandler")
	}
	return &ListingHandler{Listings: l}
}

// GetListings handles GET /api/listings?q=. It returns active listings
// with the landlord's verification badge joined in, optionally filtered by
// a substring match on title or location.
func (h *ListingHandler) GetListings(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	views, err := h.Listings.Search(ctx, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch listings."})
	}
	return c.JSON(http.StatusOK, mapListings(views))
}

// GetRecentListings handles GET /api/listings/recent: the eight newest
// active listings for the landing page.
func (h *ListingHandler) GetRecentListings(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	views, err := h.Listings.Recent(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch recent listings."})
	}
	return c.JSON(http.StatusOK, mapListings(views))
}

type createListingReq struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Location    string   `json:"location"`
	GPSLat      *float64 `json:"gpsLat"`
	GPSLng      *float64 `json:"gpsLng"`
	Description string   `json:"description"`
}

// CreateListing handles POST /api/listings (landlord only, enforced by
// route middleware). Required fields are title, price, location and both
// coordinates; price must be positive. A placeholder image is substituted
// when none is supplied.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	var req createListingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Location == "" || req.Price == nil || req.GPSLat == nil || req.GPSLng == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields."})
	}
	if *req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Price must be a positive number."})
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://picsum.photos/400/300?random=%d", time.Now().UnixMilli())
	}

	l := model.Listing{
		LandlordID:    claims.UserID,
		Title:         req.Title,
		PricePerMonth: *req.Price,
		ImageURL:      imageURL,
		Location:      req.Location,
		GPSLat:        *req.GPSLat,
		GPSLng:        *req.GPSLng,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		l.Description = &d
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Listings.Create(ctx, &l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create listing."})
	}

	view := repository.ListingView{Listing: l, LandlordVerified: claims.Verified}
	return c.JSON(http.StatusCreated, mapListings([]repository.ListingView{view})[0])
}
