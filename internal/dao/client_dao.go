package dao

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// ClientDAO handles database operations for client profiles
type ClientDAO struct {
	db *database.DB
}

// NewClientDAO creates a new ClientDAO instance
func NewClientDAO(db *database.DB) *ClientDAO {
	return &ClientDAO{db: db}
}

const clientColumns = `id, client_type, full_name, short_name, phone, email, birth_date, gender,
	citizenship, doc_type, doc_number, doc_issue_date, doc_issuer, reg_address, fact_address,
	segment, kyc_status, risk_level, note, created_at, updated_at`

// Create inserts a new client
func (dao *ClientDAO) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO client (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		c.ID, c.ClientType, c.FullName, c.ShortName, c.Phone, c.Email, c.BirthDate, c.Gender,
		c.Citizenship, c.DocType, c.DocNumber, c.DocIssueDate, c.DocIssuer, c.RegAddress, c.FactAddress,
		c.Segment, c.KYCStatus, c.RiskLevel, c.Note, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", translate(err))
	}
	return nil
}

// Update overwrites every profile field of a client
func (dao *ClientDAO) Update(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE client SET
			client_type = ?, full_name = ?, short_name = ?, phone = ?, email = ?, birth_date = ?,
			gender = ?, citizenship = ?, doc_type = ?, doc_number = ?, doc_issue_date = ?,
			doc_issuer = ?, reg_address = ?, fact_address = ?, segment = ?, kyc_status = ?,
			risk_level = ?, note = ?, updated_at = ?
		WHERE id = ?
	`

	conn := dao.db.Conn(ctx)
	result, err := conn.ExecContext(ctx, conn.Rebind(query),
		c.ClientType, c.FullName, c.ShortName, c.Phone, c.Email, c.BirthDate,
		c.Gender, c.Citizenship, c.DocType, c.DocNumber, c.DocIssueDate,
		c.DocIssuer, c.RegAddress, c.FactAddress, c.Segment, c.KYCStatus,
		c.RiskLevel, c.Note, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("client %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a client by ID
func (dao *ClientDAO) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client WHERE id = ?`

	var c models.Client
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &c, conn.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("failed to get client %s: %w", id, translate(err))
	}
	return &c, nil
}

// List searches clients by name or document number, newest first
func (dao *ClientDAO) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		where += ` AND (LOWER(full_name) LIKE LOWER(?) OR LOWER(doc_number) LIKE LOWER(?))`
		args = append(args, like, like)
	}

	conn := dao.db.Conn(ctx)

	var total int
	countQuery := `SELECT COUNT(*) FROM client` + where
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind(countQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	query := `SELECT ` + clientColumns + ` FROM client` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	var clients []models.Client
	if err := sqlx.SelectContext(ctx, conn, &clients, conn.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}
