package utils

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	pkgutils "github.com/cardops/card-issuance-api/pkg/utils"
)

// TimeFromQuery parses an optional RFC3339 or YYYY-MM-DD query parameter
func TimeFromQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := pkgutils.ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}
