package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// ReportDAO reads the projections that reports aggregate over
type ReportDAO struct {
	db *database.DB
}

// NewReportDAO creates a new ReportDAO instance
func NewReportDAO(db *database.DB) *ReportDAO {
	return &ReportDAO{db: db}
}

// ListApplicationFacts returns one row per application requested within [from, to)
func (dao *ReportDAO) ListApplicationFacts(ctx context.Context, from, to time.Time) ([]models.ApplicationFact, error) {
	query := `
		SELECT a.id AS application_id, a.requested_at, s.code AS status_code,
		       rr.name AS reject_reason_name, a.decision_at,
		       c.issued_at, c.delivered_at, c.handed_at, c.activated_at
		FROM card_application a
		JOIN ref_status s ON s.id = a.status_id
		LEFT JOIN ref_reject_reason rr ON rr.id = a.reject_reason_id
		LEFT JOIN card c ON c.application_id = a.id
		WHERE a.requested_at >= ? AND a.requested_at < ?
		ORDER BY a.requested_at ASC
	`

	var facts []models.ApplicationFact
	conn := dao.db.Conn(ctx)
	if err := sqlx.SelectContext(ctx, conn, &facts, conn.Rebind(query), from, to); err != nil {
		return nil, fmt.Errorf("failed to load application facts: %w", err)
	}
	return facts, nil
}
