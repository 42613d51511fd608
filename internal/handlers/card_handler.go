package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// CardHandler handles card requests
type CardHandler struct {
	cardService *service.CardService
}

// NewCardHandler creates a new card handler instance
func NewCardHandler(cardService *service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// GetCard handles GET /cards/:cardId
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.cardService.Get(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, card)
}

// ListCards handles GET /cards
func (h *CardHandler) ListCards(c *gin.Context) {
	page := utils.PaginationFromQuery(c)
	cards, total, err := h.cardService.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, utils.NewListResponse(cards, total, page))
}

// ApplyEvent handles POST /cards/:cardId/event
func (h *CardHandler) ApplyEvent(c *gin.Context) {
	var request models.CardEventInput
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	card, err := h.cardService.ApplyEvent(c.Request.Context(), c.Param("cardId"), request.Event, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, card)
}

// GetCardHistory handles GET /cards/:cardId/history
func (h *CardHandler) GetCardHistory(c *gin.Context) {
	rows, err := h.cardService.History(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, rows)
}
