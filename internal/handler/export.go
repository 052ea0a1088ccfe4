package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartnotes/api/internal/service"
)

// ExportHandler serves PDF downloads of single notes and whole collections.
type ExportHandler struct {
	Svc *service.NoteService
}

func NewExportHandler(svc *service.NoteService) *ExportHandler {
	return &ExportHandler{Svc: svc}
}

// Note renders one note to PDF. The document is fully buffered and checked
// before the first response byte, so a render failure never produces a
// truncated download.
func (h *ExportHandler) Note(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	data, filename, err := h.Svc.ExportNote(c.Request().Context(), uid, id)
	if err != nil {
		return respondErr(c, err)
	}
	return sendPDF(c, data, filename)
}

// All renders every note the caller owns into a single PDF.
func (h *ExportHandler) All(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	data, filename, err := h.Svc.ExportAll(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return sendPDF(c, data, filename)
}

func sendPDF(c echo.Context, data []byte, filename string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "application/pdf", data)
}
