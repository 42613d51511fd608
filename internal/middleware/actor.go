package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/utils"
)

// ActorHeader names the operator recorded in the status ledger
const ActorHeader = "X-Actor"

// ActorMiddleware copies the caller identity into the request context.
// Services substitute the default actor when it is absent.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			utils.SetContextValue(c, utils.ContextKeyActor, actor)
		}
		c.Next()
	}
}
