package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
	"github.com/cardops/card-issuance-api/internal/utils"
)

// ReportHandler serves management reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) reportRange(c *gin.Context) (models.ReportRange, bool) {
	from, err := utils.TimeFromQuery(c, "from")
	if err != nil {
		utils.SendBadRequestError(c, "Invalid query parameter", err.Error())
		return models.ReportRange{}, false
	}
	to, err := utils.TimeFromQuery(c, "to")
	if err != nil {
		utils.SendBadRequestError(c, "Invalid query parameter", err.Error())
		return models.ReportRange{}, false
	}
	r, err := h.reportService.Range(from, to)
	if err != nil {
		utils.SendServiceError(c, err)
		return models.ReportRange{}, false
	}
	return r, true
}

// Funnel handles GET /reports/funnel
func (h *ReportHandler) Funnel(c *gin.Context) {
	r, ok := h.reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.Funnel(c.Request.Context(), r)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, report)
}

// Volume handles GET /reports/volume?bucket=day|month
func (h *ReportHandler) Volume(c *gin.Context) {
	r, ok := h.reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.Volume(c.Request.Context(), r, c.DefaultQuery("bucket", service.BucketDay))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, report)
}

// SLA handles GET /reports/sla?bucket=month|week
func (h *ReportHandler) SLA(c *gin.Context) {
	r, ok := h.reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.SLA(c.Request.Context(), r, c.DefaultQuery("bucket", service.BucketMonth))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, report)
}

// RejectReasons handles GET /reports/reject-reasons
func (h *ReportHandler) RejectReasons(c *gin.Context) {
	r, ok := h.reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.RejectReasons(c.Request.Context(), r)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, report)
}
