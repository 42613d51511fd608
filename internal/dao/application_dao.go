package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// ApplicationDAO handles database operations for card applications
type ApplicationDAO struct {
	db *database.DB
}

// NewApplicationDAO creates a new ApplicationDAO instance
func NewApplicationDAO(db *database.DB) *ApplicationDAO {
	return &ApplicationDAO{db: db}
}

const applicationColumns = `a.id, a.application_no, a.client_id, a.product_id, a.tariff_id, a.channel_id,
	a.branch_id, a.delivery_method_id, a.delivery_address, a.delivery_comment, a.embossing_name,
	a.is_salary_project, a.requested_delivery_date, a.priority, a.limits_requested_json,
	a.consent_personal_data, a.consent_marketing, a.comment, a.requested_at, a.planned_issue_date,
	a.status_id, (SELECT s.code FROM ref_status s WHERE s.id = a.status_id) AS status_code,
	a.reject_reason_id, a.kyc_score, a.kyc_result, a.kyc_notes, a.decision_at, a.decision_by,
	a.created_at, a.updated_at`

// Create inserts a new application
func (dao *ApplicationDAO) Create(ctx context.Context, a *models.Application) error {
	query := `
		INSERT INTO card_application (
			id, application_no, client_id, product_id, tariff_id, channel_id, branch_id,
			delivery_method_id, delivery_address, delivery_comment, embossing_name, is_salary_project,
			requested_delivery_date, priority, limits_requested_json, consent_personal_data,
			consent_marketing, comment, requested_at, planned_issue_date, status_id, reject_reason_id,
			kyc_score, kyc_result, kyc_notes, decision_at, decision_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	conn := dao.db.Conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(query),
		a.ID, a.ApplicationNo, a.ClientID, a.ProductID, a.TariffID, a.ChannelID, a.BranchID,
		a.DeliveryMethodID, a.DeliveryAddress, a.DeliveryComment, a.EmbossingName, a.IsSalaryProject,
		a.RequestedDeliveryDate, a.Priority, a.LimitsRequested, a.ConsentPersonalData,
		a.ConsentMarketing, a.Comment, a.RequestedAt, a.PlannedIssueDate, a.StatusID, a.RejectReasonID,
		a.KYCScore, a.KYCResult, a.KYCNotes, a.DecisionAt, a.DecisionBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", translate(err))
	}
	return nil
}

// Update writes every mutable column of an application, status and decision included
func (dao *ApplicationDAO) Update(ctx context.Context, a *models.Application) error {
	query := `
		UPDATE card_application SET
			client_id = ?, product_id = ?, tariff_id = ?, channel_id = ?, branch_id = ?,
			delivery_method_id = ?, delivery_address = ?, delivery_comment = ?, embossing_name = ?,
			is_salary_project = ?, requested_delivery_date = ?, priority = ?, limits_requested_json = ?,
			consent_personal_data = ?, consent_marketing = ?, comment = ?, planned_issue_date = ?,
			status_id = ?, reject_reason_id = ?, kyc_score = ?, kyc_result = ?, kyc_notes = ?,
			decision_at = ?, decision_by = ?, updated_at = ?
		WHERE id = ?
	`

	conn := dao.db.Conn(ctx)
	result, err := conn.ExecContext(ctx, conn.Rebind(query),
		a.ClientID, a.ProductID, a.TariffID, a.ChannelID, a.BranchID,
		a.DeliveryMethodID, a.DeliveryAddress, a.DeliveryComment, a.EmbossingName,
		a.IsSalaryProject, a.RequestedDeliveryDate, a.Priority, a.LimitsRequested,
		a.ConsentPersonalData, a.ConsentMarketing, a.Comment, a.PlannedIssueDate,
		a.StatusID, a.RejectReasonID, a.KYCScore, a.KYCResult, a.KYCNotes,
		a.DecisionAt, a.DecisionBy, a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("application %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves an application by ID
func (dao *ApplicationDAO) GetByID(ctx context.Context, id string) (*models.Application, error) {
	return dao.get(ctx, id, false)
}

// GetForUpdate retrieves an application and locks its row until the surrounding transaction ends
func (dao *ApplicationDAO) GetForUpdate(ctx context.Context, id string) (*models.Application, error) {
	return dao.get(ctx, id, true)
}

func (dao *ApplicationDAO) get(ctx context.Context, id string, lock bool) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM card_application a WHERE a.id = ?`
	if lock {
		query += ` FOR UPDATE`
	}

	var a models.Application
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &a, conn.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("failed to get application %s: %w", id, translate(err))
	}
	return &a, nil
}

// List retrieves a filtered page of applications, most recently requested first
func (dao *ApplicationDAO) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	from := `
		FROM card_application a
		JOIN client c ON c.id = a.client_id
		JOIN ref_status st ON st.id = a.status_id
		WHERE 1=1`
	args := []interface{}{}

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		from += ` AND (LOWER(a.application_no) LIKE LOWER(?) OR LOWER(c.full_name) LIKE LOWER(?) OR LOWER(c.doc_number) LIKE LOWER(?))`
		args = append(args, like, like, like)
	}
	if len(filter.StatusCodes) > 0 {
		from += ` AND st.code IN (?` + strings.Repeat(", ?", len(filter.StatusCodes)-1) + `)`
		for _, code := range filter.StatusCodes {
			args = append(args, code)
		}
	}
	if filter.From != nil {
		from += ` AND a.requested_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		from += ` AND a.requested_at < ?`
		args = append(args, *filter.To)
	}

	conn := dao.db.Conn(ctx)

	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind(`SELECT COUNT(*)`+from), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `SELECT ` + applicationColumns + from + ` ORDER BY a.requested_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	var apps []models.Application
	if err := sqlx.SelectContext(ctx, conn, &apps, conn.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}
