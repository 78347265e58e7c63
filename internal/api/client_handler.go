package api

import (
	"net/http"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, logger: logger}
}

// ListClients godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Client
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get a client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CreateClient godoc
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body service.ClientInput true "Client details"
// @Success 201 {object} domain.Client
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Name already in use"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient godoc
// @Summary Update a client
// @Description A rename is propagated to the client's sessions.
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param client body service.ClientInput true "Client details"
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete a client
// @Description Also cancels every session of the client from today on.
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} gin.H "cancelledSessions"
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.clientService.Delete(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelledSessions": n})
}
