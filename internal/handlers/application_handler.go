package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// ApplicationHandler handles card application requests, including fees and card creation
type ApplicationHandler struct {
	applicationService *service.ApplicationService
	cardService        *service.CardService
	feeService         *service.FeeService
}

// NewApplicationHandler creates a new application handler instance
func NewApplicationHandler(applicationService *service.ApplicationService, cardService *service.CardService, feeService *service.FeeService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		cardService:        cardService,
		feeService:         feeService,
	}
}

// CreateApplication handles POST /applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var request models.ApplicationFields
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), request, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, app)
}

// UpdateApplication handles PUT /applications/:applicationId
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	var request models.ApplicationFields
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	app, err := h.applicationService.Update(c.Request.Context(), c.Param("applicationId"), request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

// GetApplication handles GET /applications/:applicationId
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.applicationService.Get(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

// ListApplications handles GET /applications?q=&status=NEW,IN_REVIEW&from=&to=
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	from, err := utils.TimeFromQuery(c, "from")
	if err != nil {
		utils.SendBadRequestError(c, "Invalid query parameter", err.Error())
		return
	}
	to, err := utils.TimeFromQuery(c, "to")
	if err != nil {
		utils.SendBadRequestError(c, "Invalid query parameter", err.Error())
		return
	}

	var statuses []string
	for _, value := range c.QueryArray("status") {
		for _, code := range strings.Split(value, ",") {
			if code = strings.TrimSpace(code); code != "" {
				statuses = append(statuses, strings.ToUpper(code))
			}
		}
	}

	page := utils.PaginationFromQuery(c)
	apps, total, err := h.applicationService.List(c.Request.Context(), models.ApplicationFilter{
		Query:       c.Query("q"),
		StatusCodes: statuses,
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, utils.NewListResponse(apps, total, page))
}

// StartReview handles POST /applications/:applicationId/review
func (h *ApplicationHandler) StartReview(c *gin.Context) {
	app, err := h.applicationService.StartReview(c.Request.Context(), c.Param("applicationId"), utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

// Decide handles POST /applications/:applicationId/decision
func (h *ApplicationHandler) Decide(c *gin.Context) {
	var request models.DecisionInput
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	app, err := h.applicationService.Decide(c.Request.Context(), c.Param("applicationId"), request, utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

// EnsureCard handles POST /applications/:applicationId/ensure-card
func (h *ApplicationHandler) EnsureCard(c *gin.Context) {
	card, err := h.cardService.EnsureForApplication(c.Request.Context(), c.Param("applicationId"), utils.GetActorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, card)
}

// GetApplicationHistory handles GET /applications/:applicationId/history
func (h *ApplicationHandler) GetApplicationHistory(c *gin.Context) {
	rows, err := h.applicationService.History(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, rows)
}

// RecordFee handles POST /applications/:applicationId/fees
func (h *ApplicationHandler) RecordFee(c *gin.Context) {
	var request models.FeeOperationInput
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	op, err := h.feeService.Record(c.Request.Context(), c.Param("applicationId"), request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, op)
}

// ListFees handles GET /applications/:applicationId/fees
func (h *ApplicationHandler) ListFees(c *gin.Context) {
	ops, err := h.feeService.List(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, ops)
}
