package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartnotes/api/internal/apperr"
	"github.com/smartnotes/api/internal/service"
)

// ShareHandler serves the share toggle and the public read endpoint.
type ShareHandler struct {
	Svc *service.NoteService
}

func NewShareHandler(svc *service.NoteService) *ShareHandler {
	return &ShareHandler{Svc: svc}
}

// Toggle flips sharing for a note. Enabling mints a fresh share id; a
// previously revoked link never works again.
func (h *ShareHandler) Toggle(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	n, err := h.Svc.ToggleShare(c.Request().Context(), uid, id)
	if err != nil {
		return respondErr(c, err)
	}

	resp := echo.Map{
		"message":  "Note sharing disabled",
		"isShared": n.IsShared,
		"shareId":  nil,
		"shareUrl": nil,
	}
	if n.IsShared && n.ShareToken != nil {
		resp["message"] = "Note sharing enabled"
		resp["shareId"] = *n.ShareToken
		resp["shareUrl"] = h.Svc.ShareURL(*n.ShareToken)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetShared returns a shared note by its share id. No authentication; the
// payload carries the author's display name but no account identifiers.
func (h *ShareHandler) GetShared(c echo.Context) error {
	token := c.Param("shareId")
	if token == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Shared note not found or no longer available"})
	}

	n, err := h.Svc.GetShared(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Shared note not found or no longer available"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, n)
}
