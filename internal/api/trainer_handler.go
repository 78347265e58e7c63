package api

import (
	"net/http"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TrainerHandler struct {
	trainerService service.TrainerService
	booking        service.BookingService
	logger         *zap.Logger
}

func NewTrainerHandler(trainerService service.TrainerService, booking service.BookingService, logger *zap.Logger) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		booking:        booking,
		logger:         logger,
	}
}

// ListTrainers godoc
// @Summary List trainers
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Trainer
// @Router /trainers [get]
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.trainerService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if trainers == nil {
		trainers = []domain.Trainer{}
	}
	c.JSON(http.StatusOK, trainers)
}

// GetTrainer godoc
// @Summary Get a trainer
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} domain.Trainer
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /trainers/{id} [get]
func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// CreateTrainer godoc
// @Summary Create a trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trainer body service.TrainerInput true "Trainer profile and weekly availability"
// @Success 201 {object} domain.Trainer
// @Failure 400 {object} gin.H "Invalid input"
// @Router /trainers [post]
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var req service.TrainerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainer, err := h.trainerService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

// UpdateTrainer godoc
// @Summary Update a trainer
// @Description Replaces profile, specialties and weekly availability. A rename is propagated to booked sessions.
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param trainer body service.TrainerInput true "Trainer details"
// @Success 200 {object} domain.Trainer
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /trainers/{id} [put]
func (h *TrainerHandler) UpdateTrainer(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req service.TrainerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainer, err := h.trainerService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// DeleteTrainer godoc
// @Summary Delete a trainer
// @Description Booked sessions are kept.
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.trainerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleOffDay godoc
// @Summary Block or unblock a whole day for a trainer
// @Description Creating an off-day never cancels sessions; the ones already booked are returned.
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} service.OffDayToggle
// @Router /trainers/{id}/off-days/{date}/toggle [post]
func (h *TrainerHandler) ToggleOffDay(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.booking.ToggleOffDay(c.Request.Context(), actor, id, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SessionsOnDate lists a trainer's sessions on one date for off-day
// reconciliation.
func (h *TrainerHandler) SessionsOnDate(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.booking.SessionsOnDay(c.Request.Context(), id, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}
