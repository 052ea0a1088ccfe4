// Package handler exposes the HTTP layer: request binding, error-to-status
// translation and response shaping. Business rules live in the service
// package.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smartnotes/api/internal/apperr"
)

// respondErr converts a service error into the JSON error envelope. Every
// failure crossing the API boundary goes through here, so no raw error ever
// leaks as a 500 page. NotFound responses intentionally carry no detail;
// ownership mismatches must read exactly like missing records.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request", "error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Note not found"})
	case errors.Is(err, apperr.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "Rate limit exceeded. Please try again later.", "error": err.Error()})
	case errors.Is(err, apperr.ErrServiceUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Service is temporarily unavailable. Please try again later.", "error": err.Error()})
	case errors.Is(err, apperr.ErrMisconfigured):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "AI summarization is not configured", "error": err.Error()})
	case errors.Is(err, apperr.ErrSummarization):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to summarize note", "error": err.Error()})
	case errors.Is(err, apperr.ErrExport):
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to export PDF", "error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
}

// getUserID extracts the authenticated user id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
		return v, nil
	}
	return 0, apperr.ErrUnauthorized
}

// noteIDParam parses the :id path parameter. Unparseable ids read as
// missing notes, the same as unknown ones.
func noteIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}
