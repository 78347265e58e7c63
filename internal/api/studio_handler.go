package api

import (
	"net/http"
	"strconv"

	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultActivityLimit = 200

// StudioHandler serves the read-mostly studio views: activity log,
// dashboard, calendar export and the duplicate-slot report.
type StudioHandler struct {
	booking service.BookingService
	export  service.ExportService
	audit   service.AuditService
	logger  *zap.Logger
}

func NewStudioHandler(booking service.BookingService, export service.ExportService, audit service.AuditService, logger *zap.Logger) *StudioHandler {
	return &StudioHandler{booking: booking, export: export, audit: audit, logger: logger}
}

// Activity godoc
// @Summary Activity log
// @Tags Studio
// @Produce json
// @Security BearerAuth
// @Param date query string false "Session date, YYYY-MM-DD"
// @Param trainer query string false "Trainer name, case-insensitive"
// @Param client query string false "Part of the client name, case-insensitive"
// @Param limit query int false "Maximum entries, default 200"
// @Success 200 {array} domain.ActivityLogEntry
// @Failure 400 {object} gin.H "Invalid limit"
// @Router /activity [get]
func (h *StudioHandler) Activity(c *gin.Context) {
	limit := int64(defaultActivityLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}
	filter := repository.ActivityFilter{
		Date:    c.Query("date"),
		Trainer: c.Query("trainer"),
		Client:  c.Query("client"),
	}

	entries, err := h.booking.Activity(c.Request.Context(), filter, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Dashboard godoc
// @Summary Studio dashboard counts
// @Tags Studio
// @Produce json
// @Security BearerAuth
// @Success 200 {object} view.Dashboard
// @Router /dashboard [get]
func (h *StudioHandler) Dashboard(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	d, err := h.booking.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CalendarExport godoc
// @Summary Export upcoming sessions as iCalendar
// @Description Uploads an .ics file of the client's upcoming sessions and returns a presigned download URL.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 400 {object} gin.H "Caller has no client identity"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/calendar-export [post]
func (h *StudioHandler) CalendarExport(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	res, err := h.export.ExportClientCalendar(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Duplicates handles GET /admin/duplicates.
func (h *StudioHandler) Duplicates(c *gin.Context) {
	report, err := h.audit.FindDuplicates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
