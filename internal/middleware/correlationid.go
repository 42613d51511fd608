package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/utils"
	pkgutils "github.com/cardops/card-issuance-api/pkg/utils"
)

// CorrelationIDHeader is echoed on every response
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware reuses an inbound request id or mints one
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = pkgutils.GenerateCorrelationID()
		}
		utils.SetContextValue(c, utils.ContextKeyCorrelationID, correlationID)
		c.Header(CorrelationIDHeader, correlationID)
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{CorrelationIDHeader, "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}
