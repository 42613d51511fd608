package dao

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// CardDAO handles database operations for cards
type CardDAO struct {
	db *database.DB
}

// NewCardDAO creates a new CardDAO instance
func NewCardDAO(db *database.DB) *CardDAO {
	return &CardDAO{db: db}
}

const cardColumns = `c.id, c.card_no, c.application_id, c.status_id,
	(SELECT s.code FROM ref_status s WHERE s.id = c.status_id) AS status_code,
	c.pan_masked, c.expiry_month, c.expiry_year, c.issued_at, c.delivered_at, c.handed_at,
	c.activated_at, c.closed_at, c.activation_channel_id, c.note, c.created_at`

// Create inserts a new card. A second card for the same application yields ErrDuplicate.
func (dao *CardDAO) Create(ctx context.Context, c *models.Card) error {
	query := `
		INSERT INTO card (
			id, card_no, application_id, status_id, pan_masked, expiry_month, expiry_year,
			issued_at, delivered_at, handed_at, activated_at, closed_at, activation_channel_id, note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		c.ID, c.CardNo, c.ApplicationID, c.StatusID, c.PANMasked, c.ExpiryMonth, c.ExpiryYear,
		c.IssuedAt, c.DeliveredAt, c.HandedAt, c.ActivatedAt, c.ClosedAt, c.ActivationChannelID, c.Note, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", translate(err))
	}
	return nil
}

// Update writes the lifecycle columns of a card
func (dao *CardDAO) Update(ctx context.Context, c *models.Card) error {
	query := `
		UPDATE card SET
			status_id = ?, pan_masked = ?, expiry_month = ?, expiry_year = ?, issued_at = ?,
			delivered_at = ?, handed_at = ?, activated_at = ?, closed_at = ?,
			activation_channel_id = ?, note = ?
		WHERE id = ?
	`

	conn := dao.db.Conn(ctx)
	result, err := conn.ExecContext(ctx, conn.Rebind(query),
		c.StatusID, c.PANMasked, c.ExpiryMonth, c.ExpiryYear, c.IssuedAt,
		c.DeliveredAt, c.HandedAt, c.ActivatedAt, c.ClosedAt,
		c.ActivationChannelID, c.Note,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("card %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a card by ID
func (dao *CardDAO) GetByID(ctx context.Context, id string) (*models.Card, error) {
	return dao.getBy(ctx, "c.id", id, false)
}

// GetForUpdate retrieves a card and locks its row until the surrounding transaction ends
func (dao *CardDAO) GetForUpdate(ctx context.Context, id string) (*models.Card, error) {
	return dao.getBy(ctx, "c.id", id, true)
}

// GetByApplicationID retrieves the card issued against an application
func (dao *CardDAO) GetByApplicationID(ctx context.Context, applicationID string) (*models.Card, error) {
	return dao.getBy(ctx, "c.application_id", applicationID, false)
}

func (dao *CardDAO) getBy(ctx context.Context, column, value string, lock bool) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM card c WHERE ` + column + ` = ?`
	if lock {
		query += ` FOR UPDATE`
	}

	var c models.Card
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &c, conn.Rebind(query), value); err != nil {
		return nil, fmt.Errorf("failed to get card by %s: %w", column, translate(err))
	}
	return &c, nil
}

// List retrieves a page of cards, most recently issued first
func (dao *CardDAO) List(ctx context.Context, limit, offset int) ([]models.Card, int, error) {
	conn := dao.db.Conn(ctx)

	var total int
	if err := sqlx.GetContext(ctx, conn, &total, `SELECT COUNT(*) FROM card`); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}

	// CASE keeps never-issued cards last on both dialects
	query := `SELECT ` + cardColumns + ` FROM card c
		ORDER BY CASE WHEN c.issued_at IS NULL THEN 1 ELSE 0 END, c.issued_at DESC, c.created_at DESC
		LIMIT ? OFFSET ?`

	var cards []models.Card
	if err := sqlx.SelectContext(ctx, conn, &cards, conn.Rebind(query), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, total, nil
}
