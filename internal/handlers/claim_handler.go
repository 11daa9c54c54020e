package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/services"
)

// ClaimHandler handles claim-related HTTP requests
type ClaimHandler struct {
	claimService *services.ClaimService
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// RegisterClaimRoutes registers claim routes
func (h *ClaimHandler) RegisterClaimRoutes(g *echo.Group) {
	g.POST("/claims", h.SubmitClaim)
	g.GET("/claims", h.ListClaims)
	g.GET("/claims/:id", h.GetClaim)
	g.PUT("/claims/:id/review", h.ReviewClaim)
}

// SubmitClaim files a new claim against a found listing
func (h *ClaimHandler) SubmitClaim(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SubmitClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	claim, err := h.claimService.Submit(c.Request().Context(), actor, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"claim": claim}})
}

// ListClaims returns claims filterable by listing id and status.
// Non-privileged callers only ever see their own claims.
func (h *ClaimHandler) ListClaims(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var filter repositories.ClaimFilter
	if v := c.QueryParam("listing_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
		}
		filter.ListingID = uint(id)
	}
	if v := c.QueryParam("status"); v != "" {
		filter.Status = models.ClaimStatus(v)
	}

	claims, err := h.claimService.List(c.Request().Context(), actor, filter)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"claims": claims}})
}

// GetClaim returns one expanded claim
func (h *ClaimHandler) GetClaim(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	claimID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid claim ID")
	}

	claim, err := h.claimService.Get(c.Request().Context(), actor, uint(claimID))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"claim": claim}})
}

// ReviewClaim applies an approve/reject decision to a pending claim
func (h *ClaimHandler) ReviewClaim(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	claimID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid claim ID")
	}

	var req models.ReviewClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	claim, err := h.claimService.Review(c.Request().Context(), actor, uint(claimID), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"claim": claim}})
}
