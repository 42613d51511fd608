package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// AddItemsRequest lists the applications to put into a batch
type AddItemsRequest struct {
	ApplicationIDs []string `json:"applicationIds" binding:"required,min=1"`
}

// SetBatchStatusRequest names the target batch status
type SetBatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetBatchStatusResponse carries the batch and, on receipt, the issuance summary
type SetBatchStatusResponse struct {
	Batch  *models.Batch            `json:"batch"`
	Issued *models.IssueCardsResult `json:"issued,omitempty"`
}

// BatchHandler handles issue batch requests
type BatchHandler struct {
	batchService *service.BatchService
	cardService  *service.CardService
}

// NewBatchHandler creates a new batch handler instance
func NewBatchHandler(batchService *service.BatchService, cardService *service.CardService) *BatchHandler {
	return &BatchHandler{batchService: batchService, cardService: cardService}
}

// CreateBatch handles POST /batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var request models.BatchCreateInput
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), request, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, batch)
}

// UpdateBatch handles PUT /batches/:batchId
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	var request models.BatchUpdateInput
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	batch, err := h.batchService.Update(c.Request.Context(), c.Param("batchId"), request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, batch)
}

// GetBatch handles GET /batches/:batchId
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.batchService.Get(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, batch)
}

// ListBatches handles GET /batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	page := utils.PaginationFromQuery(c)
	batches, total, err := h.batchService.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, utils.NewListResponse(batches, total, page))
}

// AddItems handles POST /batches/:batchId/items
func (h *BatchHandler) AddItems(c *gin.Context) {
	var request AddItemsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	items, err := h.batchService.AddItems(c.Request.Context(), c.Param("batchId"), request.ApplicationIDs, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"added": len(items), "items": items})
}

// SetStatus handles POST /batches/:batchId/status
func (h *BatchHandler) SetStatus(c *gin.Context) {
	var request SetBatchStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	batch, issued, err := h.batchService.SetStatus(c.Request.Context(), c.Param("batchId"), request.Status, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, SetBatchStatusResponse{Batch: batch, Issued: issued})
}

// IssueCards handles POST /batches/:batchId/issue-cards. The ledger records the system actor.
func (h *BatchHandler) IssueCards(c *gin.Context) {
	result, err := h.cardService.IssueCards(c.Request.Context(), c.Param("batchId"), service.DefaultActor)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, result)
}

// GetBatchHistory handles GET /batches/:batchId/history
func (h *BatchHandler) GetBatchHistory(c *gin.Context) {
	rows, err := h.batchService.History(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, rows)
}
