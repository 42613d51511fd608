package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// ClientHandler handles client profile requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler instance
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var request models.ClientFields
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, client)
}

// UpdateClient handles PUT /clients/:clientId
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var request models.ClientFields
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), c.Param("clientId"), request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, client)
}

// GetClient handles GET /clients/:clientId
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, client)
}

// ListClients handles GET /clients?q=
func (h *ClientHandler) ListClients(c *gin.Context) {
	page := utils.PaginationFromQuery(c)
	clients, total, err := h.clientService.List(c.Request.Context(), models.ClientFilter{
		Query:  c.Query("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, utils.NewListResponse(clients, total, page))
}
