// Calendar HTTP handlers.
//
// This file exposes REST endpoints for the meal calendar:
//   - GET    /calendar                                 (list entries, ETag support)
//   - POST   /calendar                                 (assign a recipe to a slot; upsert)
//   - DELETE /calendar/{owner_id}/{date_saved}/{meal}  (clear one slot)
//   - GET    /calendar/week                            (7-day grid)
//   - GET    /calendar/week/export                     (grid as PDF or XLSX download)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UpsertCalendarRequest is the JSON payload for filling a calendar slot.
type UpsertCalendarRequest struct {
	// OwnerID defaults to the authenticated user.
	OwnerID   string `json:"owner_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	DateSaved string `json:"date_saved" binding:"required" example:"2025-06-02"`
	Meal      string `json:"meal" binding:"required" example:"dinner" enums:"breakfast,lunch,dinner"`
	RecipeID  string `json:"recipe_id" binding:"required" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
}

// ListCalendar godoc
// @ID          listCalendar
// @Summary     List calendar entries
// @Description Returns the owner's entries ordered by date then meal (breakfast, lunch, dinner),
// @Description optionally limited to an inclusive date range. Supports weak ETag via If-None-Match.
// @Tags        Calendar
// @Produce     json
// @Param       owner_id       query   string  true   "Owner id"
// @Param       from           query   string  false  "First day (YYYY-MM-DD)"
// @Param       to             query   string  false  "Last day (YYYY-MM-DD)"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {array}   domain.CalendarEntry
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar [get]
func (h *Handlers) ListCalendar(c *gin.Context) {
	ctx := c.Request.Context()
	owner := strings.TrimSpace(c.Query("owner_id"))
	from, to := c.Query("from"), c.Query("to")

	if owner != "" {
		if count, maxTS, err := h.calSvc.Version(ctx, owner); err == nil {
			if checkETag(c, "calendar", owner+":"+from+":"+to, count, maxTS) {
				return
			}
		}
	}

	entries, err := h.calSvc.List(ctx, owner, from, to)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, entries)
}

// UpsertCalendar godoc
// @ID          upsertCalendar
// @Summary     Assign a recipe to a meal slot
// @Description Creates the (owner, date, meal) entry or replaces its recipe when the slot is taken.
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       Authorization  header  string  false "Bearer token"
// @Param       body           body    handlers.UpsertCalendarRequest  true  "Slot"
// @Success     200  {object}  domain.CalendarEntry
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar [post]
func (h *Handlers) UpsertCalendar(c *gin.Context) {
	var req UpsertCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date_saved, meal and recipe_id required")
		return
	}
	owner, allowed := resolveOwner(c, strings.TrimSpace(req.OwnerID))
	if !allowed {
		return
	}

	e, err := h.calSvc.Upsert(c.Request.Context(), owner, req.DateSaved, req.Meal, req.RecipeID)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusOK, e)
}

// DeleteCalendar godoc
// @ID          deleteCalendar
// @Summary     Clear a meal slot
// @Tags        Calendar
// @Param       Authorization  header  string  false "Bearer token"
// @Param       owner_id    path  string  true  "Owner id"
// @Param       date_saved  path  string  true  "Day (YYYY-MM-DD)"
// @Param       meal        path  string  true  "Meal"  Enums(breakfast, lunch, dinner)
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Owner mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Entry not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/{owner_id}/{date_saved}/{meal} [delete]
func (h *Handlers) DeleteCalendar(c *gin.Context) {
	owner, allowed := resolveOwner(c, c.Param("owner_id"))
	if !allowed {
		return
	}
	if err := h.calSvc.Delete(c.Request.Context(), owner, c.Param("date_saved"), c.Param("meal")); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// CalendarWeek godoc
// @ID          calendarWeek
// @Summary     Week plan
// @Description Returns 7 consecutive days from start (default today, UTC), each with breakfast, lunch and
// @Description dinner slots. Empty slots have an empty recipe_id.
// @Tags        Calendar
// @Produce     json
// @Param       owner_id  query  string  true   "Owner id"
// @Param       start     query  string  false  "First day (YYYY-MM-DD)"
// @Success     200  {object}  domain.WeekPlan
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/week [get]
func (h *Handlers) CalendarWeek(c *gin.Context) {
	plan, err := h.calSvc.Week(c.Request.Context(), c.Query("owner_id"), c.Query("start"))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, plan)
}

// ExportCalendarWeek godoc
// @ID          exportCalendarWeek
// @Summary     Download week plan
// @Description Renders the week plan as a PDF table or an XLSX sheet.
// @Tags        Calendar
// @Produce     application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       owner_id  query  string  true   "Owner id"
// @Param       start     query  string  false  "First day (YYYY-MM-DD)"
// @Param       format    query  string  false  "Output format"  Enums(pdf, xlsx) default(pdf)
// @Success     200  {file}    binary
// @Header      200  {string}  Content-Disposition  "attachment; filename=..."
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /calendar/week/export [get]
func (h *Handlers) ExportCalendarWeek(c *gin.Context) {
	doc, err := h.calSvc.Export(c.Request.Context(), c.Query("owner_id"), c.Query("start"), c.Query("format"))
	if err != nil {
		failService(c, err, ErrCodeExportFailed)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
