package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartnotes/api/internal/service"
)

// NoteHandler serves the authenticated note CRUD surface.
type NoteHandler struct {
	Svc *service.NoteService
}

func NewNoteHandler(svc *service.NoteService) *NoteHandler {
	return &NoteHandler{Svc: svc}
}

type createNoteReq struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type updateNoteReq struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Tags    *[]string `json:"tags"`
}

// Create stores a new note for the caller.
func (h *NoteHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req createNoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	n, err := h.Svc.Create(c.Request().Context(), uid, req.Title, req.Content, req.Tags)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toNoteJSON(n))
}

// List returns the caller's notes, pinned first then newest first. Optional
// query params: search (title, content or tag substring) and tag (exact).
func (h *NoteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	notes, err := h.Svc.List(c.Request().Context(), uid, c.QueryParam("search"), c.QueryParam("tag"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toNoteListJSON(notes))
}

// Get returns one of the caller's notes by id.
func (h *NoteHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	n, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toNoteJSON(n))
}

// Update modifies a note. Empty title/content fields keep their current
// values; a present tags array replaces the tag set wholesale.
func (h *NoteHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req updateNoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	n, err := h.Svc.Update(c.Request().Context(), uid, id, service.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toNoteJSON(n))
}

// Delete removes a note and its tags.
func (h *NoteHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted successfully"})
}

// TogglePin flips the pinned flag and reports the new state.
func (h *NoteHandler) TogglePin(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	pinned, err := h.Svc.TogglePin(c.Request().Context(), uid, id)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Note unpinned"
	if pinned {
		msg = "Note pinned"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "isPinned": pinned})
}

// Stats returns note counters and the caller's ten most used tags.
func (h *NoteHandler) Stats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	stats, err := h.Svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Summarize generates (or returns the existing) AI summary for a note.
func (h *NoteHandler) Summarize(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := noteIDParam(c)
	if err != nil {
		return respondErr(c, err)
	}

	summary, err := h.Svc.Summarize(c.Request().Context(), uid, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Note summarized successfully",
		"summary": summary,
	})
}
