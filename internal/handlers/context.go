package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
)

// actorFromContext returns the caller identity stored by the auth
// middleware. The zero Actor means no identity.
func actorFromContext(c echo.Context) (models.Actor, bool) {
	actor, ok := c.Get("actor").(models.Actor)
	if !ok || actor.ID == 0 {
		return models.Actor{}, false
	}
	return actor, true
}

// httpError maps the service error taxonomy onto HTTP statuses. The
// error message is surfaced verbatim: conflict reasons are expected,
// frequent outcomes the user needs to see.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidState):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
