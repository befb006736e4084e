package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/repository"
)

// ProviderHandler serves the public service-provider directory.
type ProviderHandler struct {
	Providers *repository.ProviderRepo
}

func NewProviderHandler(p *repository.ProviderRepo) *ProviderHandler {
	if p == nil {
		panic("nil repository passed to NewProviderHandler")
	}
	return &ProviderHandler{Providers: p}
}

type providerResp struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Service  string  `json:"service"`
	ImageURL *string `json:"imageUrl"`
	Contact  string  `json:"contact"`
}

// GetProviders handles GET /api/providers. An optional ?q= term filters
// by a case-insensitive substring match on name or service category.
func (h *ProviderHandler) GetProviders(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))

	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Providers.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch providers."})
	}
	out := make([]providerResp, 0, len(rows))
	for _, p := range rows {
		out = append(out, providerResp{
			ID: fmtID(p.ID), Name: p.Name, Service: p.Service,
			ImageURL: p.ImageURL, Contact: p.Contact,
		})
	}
	return c.JSON(http.StatusOK, out)
}
