package api

import (
	"net/http"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	scopeSingle = "single"
	scopeFuture = "future"
)

// BookingHandler serves session mutations and the calendar views.
type BookingHandler struct {
	booking service.BookingService
	logger  *zap.Logger
}

func NewBookingHandler(booking service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{booking: booking, logger: logger}
}

// CreateSessionRequest books one slot, or a series when Recurrence is set.
type CreateSessionRequest struct {
	service.BookingRequest
	Recurrence *service.RecurrenceRequest `json:"recurrence,omitempty"`
}

// scope reads ?scope=single|future, defaulting to single.
func scope(c *gin.Context) (string, bool) {
	s := c.DefaultQuery("scope", scopeSingle)
	if s != scopeSingle && s != scopeFuture {
		abortWithError(c, http.StatusBadRequest, "scope must be 'single' or 'future'")
		return "", false
	}
	return s, true
}

// CreateSession godoc
// @Summary Book a session or a recurring series
// @Description Books one slot. When "recurrence" is set the slot anchors a series and every instance is written under one seriesId.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body CreateSessionRequest true "Booking details"
// @Success 201 {object} domain.Session "Single session booked"
// @Success 201 {object} service.SeriesResult "Series booked"
// @Failure 400 {object} gin.H "Invalid input or slot not bookable"
// @Failure 403 {object} gin.H "Role may not book"
// @Failure 409 {object} gin.H "Slot already booked"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions [post]
func (h *BookingHandler) CreateSession(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Recurrence != nil {
		res, err := h.booking.CreateSeries(c.Request.Context(), actor, req.BookingRequest, *req.Recurrence)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, res)
		return
	}

	session, err := h.booking.CreateSingle(c.Request.Context(), actor, req.BookingRequest)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary Reschedule a session
// @Description scope=future applies trainer, service and time changes to this and every later session of its series.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param scope query string false "single (default) or future"
// @Param changes body service.SessionChanges true "Fields to change"
// @Success 200 {object} domain.Session
// @Failure 400 {object} gin.H "Invalid input or scope"
// @Failure 403 {object} gin.H "Session belongs to another client"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Slot already booked"
// @Router /sessions/{id} [put]
func (h *BookingHandler) UpdateSession(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	sc, ok := scope(c)
	if !ok {
		return
	}
	var changes service.SessionChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if sc == scopeFuture {
		res, err := h.booking.EditSeriesForward(c.Request.Context(), actor, id, changes)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	session, err := h.booking.EditSingle(c.Request.Context(), actor, id, changes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Cancel a session
// @Description scope=future cancels this and every later session of its series.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param scope query string false "single (default) or future"
// @Success 200 {object} gin.H "Number of sessions deleted"
// @Failure 400 {object} gin.H "Invalid ID or scope"
// @Failure 403 {object} gin.H "Session belongs to another client"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{id} [delete]
func (h *BookingHandler) DeleteSession(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	sc, ok := scope(c)
	if !ok {
		return
	}

	if sc == scopeFuture {
		n, err := h.booking.DeleteSeriesForward(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
		return
	}

	if err := h.booking.DeleteSingle(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}

// Calendar godoc
// @Summary Weekly calendar grid
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "Any date in the week (YYYY-MM-DD), defaults to this week"
// @Param trainerId query string false "Limit the grid to one trainer"
// @Success 200 {object} view.Week
// @Failure 400 {object} gin.H "Invalid date or trainer ID"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /calendar [get]
func (h *BookingHandler) Calendar(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var trainerID primitive.ObjectID
	if hex := c.Query("trainerId"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainerId format.")
			return
		}
		trainerID = id
	}

	week, err := h.booking.Week(c.Request.Context(), actor, c.Query("weekStart"), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// Availability godoc
// @Summary Trainers free for a slot
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param date query string true "YYYY-MM-DD"
// @Param time query string true "Slot time, 12h or 24h"
// @Param service query string false "Service name the trainer must offer"
// @Param excludeTrainerId query string false "Trainer to leave out"
// @Success 200 {array} domain.Trainer
// @Failure 400 {object} gin.H "Invalid query"
// @Router /availability [get]
func (h *BookingHandler) Availability(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var q service.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	trainers, err := h.booking.AvailableTrainers(c.Request.Context(), actor, q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainers)
}

// MySessions godoc
// @Summary Client's upcoming and past sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} view.Partition
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /me/sessions [get]
func (h *BookingHandler) MySessions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	p, err := h.booking.ClientSessions(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Stream handles GET /sessions/stream. Every event carries the full
// visible session set.
func (h *BookingHandler) Stream(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	snapshots, err := h.booking.Subscribe(ctx, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-snapshots:
			if !open {
				return
			}
			if snap.Err != nil {
				h.logger.Warn("session stream ended", zap.String("role", string(actor.Role)), zap.Error(snap.Err))
				c.SSEvent("error", gin.H{"error": "session stream interrupted"})
				c.Writer.Flush()
				return
			}
			sessions := snap.Sessions
			if sessions == nil {
				sessions = []domain.Session{}
			}
			c.SSEvent("sessions", sessions)
			c.Writer.Flush()
		}
	}
}
