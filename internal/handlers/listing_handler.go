package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
)

// ListingHandler exposes the read-only listing lookups claims are
// validated against. Listing creation and editing live in another
// service.
type ListingHandler struct {
	listings repositories.ListingRepository
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listings repositories.ListingRepository) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// RegisterListingRoutes registers listing routes
func (h *ListingHandler) RegisterListingRoutes(g *echo.Group) {
	g.GET("/listings/:id", h.GetListing)
}

// GetListing returns one listing
func (h *ListingHandler) GetListing(c echo.Context) error {
	if _, ok := actorFromContext(c); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	listing, err := h.listings.GetByID(uint(listingID))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"listing": listing}})
}
