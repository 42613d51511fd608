package dao

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// FeeOperationDAO records fee facts
type FeeOperationDAO struct {
	db *database.DB
}

// NewFeeOperationDAO creates a new FeeOperationDAO instance
func NewFeeOperationDAO(db *database.DB) *FeeOperationDAO {
	return &FeeOperationDAO{db: db}
}

// Create inserts a fee operation
func (dao *FeeOperationDAO) Create(ctx context.Context, op *models.FeeOperation) error {
	query := `
		INSERT INTO fee_operation (id, application_id, op_type, amount, currency, occurred_at, meta_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		op.ID, op.ApplicationID, op.OpType, op.Amount, op.Currency, op.OccurredAt, op.Meta,
	)
	if err != nil {
		return fmt.Errorf("failed to create fee operation: %w", translate(err))
	}
	return nil
}

// ListByApplication retrieves the fee operations of an application in time order
func (dao *FeeOperationDAO) ListByApplication(ctx context.Context, applicationID string) ([]models.FeeOperation, error) {
	query := `
		SELECT id, application_id, op_type, amount, currency, occurred_at, meta_json
		FROM fee_operation
		WHERE application_id = ?
		ORDER BY occurred_at ASC
	`

	var ops []models.FeeOperation
	conn := dao.db.Conn(ctx)
	if err := sqlx.SelectContext(ctx, conn, &ops, conn.Rebind(query), applicationID); err != nil {
		return nil, fmt.Errorf("failed to list fee operations: %w", err)
	}
	return ops, nil
}
