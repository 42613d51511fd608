package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardops/card-issuance-api/internal/models"
	pkgutils "github.com/cardops/card-issuance-api/pkg/utils"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// NewPaginationParams creates a new pagination params with defaults
func NewPaginationParams(limit, offset int) *PaginationParams {
	return &PaginationParams{
		Limit:  pkgutils.ValidateLimit(limit),
		Offset: pkgutils.ValidateOffset(offset),
	}
}

// PaginationFromQuery reads limit and offset query parameters. Malformed values fall back to defaults.
func PaginationFromQuery(c *gin.Context) *PaginationParams {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return NewPaginationParams(limit, offset)
}

// NewListResponse wraps a page of items
func NewListResponse[T any](items []T, total int, p *PaginationParams) models.ListResponse[T] {
	return models.ListResponse[T]{
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
		Items:  items,
	}
}
