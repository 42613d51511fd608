package dao

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// BatchDAO handles database operations for issue batches and their items
type BatchDAO struct {
	db *database.DB
}

// NewBatchDAO creates a new BatchDAO instance
func NewBatchDAO(db *database.DB) *BatchDAO {
	return &BatchDAO{db: db}
}

const batchColumns = `b.id, b.batch_no, b.vendor_id, b.status_id,
	(SELECT s.code FROM ref_status s WHERE s.id = b.status_id) AS status_code,
	b.planned_send_at, b.sent_at, b.received_at, b.created_at, b.updated_at`

const batchItemColumns = `id, batch_id, application_id, position, produced_at, delivered_to_branch_at, created_at`

// Create inserts a new batch
func (dao *BatchDAO) Create(ctx context.Context, b *models.Batch) error {
	query := `
		INSERT INTO issue_batch (
			id, batch_no, vendor_id, status_id, planned_send_at, sent_at, received_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		b.ID, b.BatchNo, b.VendorID, b.StatusID, b.PlannedSendAt, b.SentAt, b.ReceivedAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", translate(err))
	}
	return nil
}

// Update writes the mutable columns of a batch
func (dao *BatchDAO) Update(ctx context.Context, b *models.Batch) error {
	query := `
		UPDATE issue_batch SET
			vendor_id = ?, status_id = ?, planned_send_at = ?, sent_at = ?, received_at = ?, updated_at = ?
		WHERE id = ?
	`

	conn := dao.db.Conn(ctx)
	result, err := conn.ExecContext(ctx, conn.Rebind(query),
		b.VendorID, b.StatusID, b.PlannedSendAt, b.SentAt, b.ReceivedAt, b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("batch %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a batch by ID
func (dao *BatchDAO) GetByID(ctx context.Context, id string) (*models.Batch, error) {
	return dao.get(ctx, id, false)
}

// GetForUpdate retrieves a batch and locks its row until the surrounding transaction ends
func (dao *BatchDAO) GetForUpdate(ctx context.Context, id string) (*models.Batch, error) {
	return dao.get(ctx, id, true)
}

// GetByApplicationID retrieves the batch holding an application
func (dao *BatchDAO) GetByApplicationID(ctx context.Context, applicationID string) (*models.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM issue_batch b
		JOIN issue_batch_item i ON i.batch_id = b.id
		WHERE i.application_id = ?`

	var b models.Batch
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &b, conn.Rebind(query), applicationID); err != nil {
		return nil, fmt.Errorf("failed to get batch for application %s: %w", applicationID, translate(err))
	}
	return &b, nil
}

func (dao *BatchDAO) get(ctx context.Context, id string, lock bool) (*models.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM issue_batch b WHERE b.id = ?`
	if lock {
		query += ` FOR UPDATE`
	}

	var b models.Batch
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &b, conn.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("failed to get batch %s: %w", id, translate(err))
	}
	return &b, nil
}

// List retrieves a page of batches, newest first
func (dao *BatchDAO) List(ctx context.Context, limit, offset int) ([]models.Batch, int, error) {
	conn := dao.db.Conn(ctx)

	var total int
	if err := sqlx.GetContext(ctx, conn, &total, `SELECT COUNT(*) FROM issue_batch`); err != nil {
		return nil, 0, fmt.Errorf("failed to count batches: %w", err)
	}

	query := `SELECT ` + batchColumns + ` FROM issue_batch b ORDER BY b.created_at DESC LIMIT ? OFFSET ?`

	var batches []models.Batch
	if err := sqlx.SelectContext(ctx, conn, &batches, conn.Rebind(query), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, total, nil
}

// AddItem inserts a batch item. An application already in any batch yields ErrDuplicate.
func (dao *BatchDAO) AddItem(ctx context.Context, item *models.IssueBatchItem) error {
	query := `INSERT INTO issue_batch_item (` + batchItemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		item.ID, item.BatchID, item.ApplicationID, item.Position, item.ProducedAt, item.DeliveredToBranchAt, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add batch item: %w", translate(err))
	}
	return nil
}

// ListItems retrieves the items of a batch in insertion order
func (dao *BatchDAO) ListItems(ctx context.Context, batchID string) ([]models.IssueBatchItem, error) {
	query := `SELECT ` + batchItemColumns + ` FROM issue_batch_item WHERE batch_id = ? ORDER BY position ASC`

	var items []models.IssueBatchItem
	conn := dao.db.Conn(ctx)
	if err := sqlx.SelectContext(ctx, conn, &items, conn.Rebind(query), batchID); err != nil {
		return nil, fmt.Errorf("failed to list batch items: %w", err)
	}
	return items, nil
}

// CountItems returns the number of items already in a batch
func (dao *BatchDAO) CountItems(ctx context.Context, batchID string) (int, error) {
	var count int
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(`SELECT COUNT(*) FROM issue_batch_item WHERE batch_id = ?`), batchID); err != nil {
		return 0, fmt.Errorf("failed to count batch items: %w", err)
	}
	return count, nil
}
