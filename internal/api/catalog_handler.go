package api

import (
	"net/http"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the bookable service catalog.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListServices godoc
// @Summary List bookable services
// @Tags Services
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Service
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	c.JSON(http.StatusOK, services)
}

// GetService godoc
// @Summary Get a service
// @Tags Services
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 200 {object} domain.Service
// @Failure 404 {object} gin.H "Service not found"
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	svc, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService godoc
// @Summary Create a service
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param service body service.ServiceInput true "Service details"
// @Success 201 {object} domain.Service
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Name already in use"
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req service.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateService godoc
// @Summary Update a service
// @Description A rename is propagated to trainer specialties and booked sessions.
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Param service body service.ServiceInput true "Service details"
// @Success 200 {object} domain.Service
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Service not found"
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	svc, err := h.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService godoc
// @Summary Delete a service
// @Tags Services
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Service not found"
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
