package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	pkgutils "github.com/cardops/card-issuance-api/pkg/utils"
)

// Gin context keys set by the router middleware
const (
	ContextKeyActor         = "actor"
	ContextKeyCorrelationID = "correlationID"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// HTTPStatusForError maps a service error kind onto an HTTP status
func HTTPStatusForError(err error) int {
	se, ok := serviceerror.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch se.Kind {
	case serviceerror.KindNotFound:
		return http.StatusNotFound
	case serviceerror.KindInvalidState:
		return http.StatusConflict
	case serviceerror.KindValidation:
		if se.Code == serviceerror.CodeDuplicate {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SendServiceError writes err using its service kind. Storage failures are logged and not echoed.
func SendServiceError(c *gin.Context, err error) {
	status := HTTPStatusForError(err)
	se, ok := serviceerror.As(err)
	if !ok || status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("correlation_id", GetCorrelationIDFromContext(c)).Error("Request failed")
		SendInternalServerError(c, "Internal server error", "")
		return
	}

	c.JSON(status, models.ErrorResponse{
		Code:          se.Code,
		Message:       se.Message,
		CurrentStatus: se.CurrentStatus,
	})
}

// GetActorFromContext returns the caller identity, empty when none was supplied
func GetActorFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyActor)
}

// GetCorrelationIDFromContext extracts correlation ID from context
func GetCorrelationIDFromContext(c *gin.Context) string {
	correlationID, exists := c.Get(ContextKeyCorrelationID)
	if !exists {
		return pkgutils.GenerateCorrelationID()
	}
	return correlationID.(string)
}

// SetContextValue sets a value in the Gin context
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}
