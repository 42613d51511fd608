package dao

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// StatusHistoryDAO handles the append-only status ledger
type StatusHistoryDAO struct {
	db *database.DB
}

// NewStatusHistoryDAO creates a new StatusHistoryDAO instance
func NewStatusHistoryDAO(db *database.DB) *StatusHistoryDAO {
	return &StatusHistoryDAO{db: db}
}

// Append inserts a ledger row. Rows are never updated or deleted.
func (dao *StatusHistoryDAO) Append(ctx context.Context, entry *models.StatusHistory) error {
	query := `
		INSERT INTO status_history (entity_type, entity_id, status_id, changed_at, changed_by)
		VALUES (?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(
		ctx,
		conn.Rebind(query),
		entry.EntityType,
		entry.EntityID,
		entry.StatusID,
		entry.ChangedAt,
		entry.ChangedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

// ListByEntity retrieves the ledger of one entity in chronological order
func (dao *StatusHistoryDAO) ListByEntity(ctx context.Context, entity models.EntityType, entityID string) ([]models.StatusHistory, error) {
	query := `
		SELECT h.id, h.entity_type, h.entity_id, h.status_id, s.code AS status_code,
		       h.changed_at, h.changed_by
		FROM status_history h
		JOIN ref_status s ON s.id = h.status_id
		WHERE h.entity_type = ? AND h.entity_id = ?
		ORDER BY h.changed_at ASC, h.id ASC
	`

	var entries []models.StatusHistory
	conn := dao.db.Conn(ctx)
	if err := sqlx.SelectContext(ctx, conn, &entries, conn.Rebind(query), entity, entityID); err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}

	return entries, nil
}
