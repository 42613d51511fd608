package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// UpdateStatusRequest changes how a status is displayed
type UpdateStatusRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// ReferenceHandler serves the lookup catalogs
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

// NewReferenceHandler creates a new reference handler instance
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// GetMeta handles GET /meta
func (h *ReferenceHandler) GetMeta(c *gin.Context) {
	data, err := h.referenceService.LoadAll(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, data)
}

// ListStatuses handles GET /ref/statuses?entity_type=
func (h *ReferenceHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.referenceService.ListStatuses(c.Request.Context(), models.EntityType(c.Query("entity_type")))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, statuses)
}

// UpdateStatus handles PUT /ref/statuses/:statusId
func (h *ReferenceHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("statusId"), 10, 64)
	if err != nil {
		utils.SendBadRequestError(c, "Invalid status id", err.Error())
		return
	}

	var request UpdateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	status, err := h.referenceService.UpdateStatusDisplay(c.Request.Context(), id, request.Name, request.SortOrder)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, status)
}

// ListCatalog handles GET /ref/<catalog>?active_only=
func (h *ReferenceHandler) ListCatalog(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly, err := strconv.ParseBool(c.DefaultQuery("active_only", "false"))
		if err != nil {
			utils.SendBadRequestError(c, "Invalid active_only", err.Error())
			return
		}

		entries, err := h.referenceService.ListCatalog(c.Request.Context(), kind, activeOnly)
		if err != nil {
			utils.SendServiceError(c, err)
			return
		}
		utils.SendOKResponse(c, entries)
	}
}

// CreateCatalogEntry handles POST /ref/<catalog>
func (h *ReferenceHandler) CreateCatalogEntry(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := bindCatalogEntry(c, kind)
		if !ok {
			return
		}

		created, err := h.referenceService.CreateCatalogEntry(c.Request.Context(), entry)
		if err != nil {
			utils.SendServiceError(c, err)
			return
		}
		utils.SendCreatedResponse(c, created)
	}
}

// UpdateCatalogEntry handles PUT /ref/<catalog>/:id. The body replaces the whole row.
func (h *ReferenceHandler) UpdateCatalogEntry(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			utils.SendBadRequestError(c, "Invalid id", err.Error())
			return
		}
		entry, ok := bindCatalogEntry(c, kind)
		if !ok {
			return
		}

		updated, err := h.referenceService.UpdateCatalogEntry(c.Request.Context(), id, entry)
		if err != nil {
			utils.SendServiceError(c, err)
			return
		}
		utils.SendOKResponse(c, updated)
	}
}

// bindCatalogEntry decodes the body over an entry pre-filled with creation defaults
func bindCatalogEntry(c *gin.Context, kind models.ReferenceKind) (models.CatalogEntry, bool) {
	entry, err := models.NewCatalogEntry(kind)
	if err != nil {
		utils.SendBadRequestError(c, "Unknown catalog", err.Error())
		return nil, false
	}
	if err := c.ShouldBindJSON(entry); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return nil, false
	}
	return entry, true
}
