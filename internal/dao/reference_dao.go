package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/database"
	"github.com/cardops/card-issuance-api/internal/models"
)

// ReferenceDAO reads the status catalog and maintains the editable lookup catalogs
type ReferenceDAO struct {
	db *database.DB
}

// NewReferenceDAO creates a new ReferenceDAO instance
func NewReferenceDAO(db *database.DB) *ReferenceDAO {
	return &ReferenceDAO{db: db}
}

type catalogTable struct {
	table   string
	columns []string
	orderBy string
	scan    func(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) ([]models.CatalogEntry, error)
}

var catalogTables = map[models.ReferenceKind]catalogTable{
	models.RefBranch: {
		table:   "ref_branch",
		columns: []string{"code", "name", "city", "address", "phone", "is_active"},
		orderBy: "city, name",
		scan:    selectCatalog[models.Branch],
	},
	models.RefChannel: {
		table:   "ref_channel",
		columns: []string{"code", "name", "is_active"},
		orderBy: "name",
		scan:    selectCatalog[models.Channel],
	},
	models.RefDeliveryMethod: {
		table:   "ref_delivery_method",
		columns: []string{"code", "name", "base_cost", "sla_days", "is_active"},
		orderBy: "name",
		scan:    selectCatalog[models.DeliveryMethod],
	},
	models.RefVendor: {
		table:   "ref_vendor",
		columns: []string{"vendor_type", "name", "contacts", "sla_days", "is_active"},
		orderBy: "vendor_type, name",
		scan:    selectCatalog[models.Vendor],
	},
	models.RefRejectReason: {
		table:   "ref_reject_reason",
		columns: []string{"code", "name", "is_active"},
		orderBy: "name",
		scan:    selectCatalog[models.RejectReason],
	},
	models.RefCardProduct: {
		table:   "ref_card_product",
		columns: []string{"code", "name", "payment_system", "level", "currency", "term_months", "is_virtual", "metadata_json", "is_active"},
		orderBy: "payment_system, level, name",
		scan:    selectCatalog[models.CardProduct],
	},
	models.RefTariffPlan: {
		table:   "ref_tariff_plan",
		columns: []string{"code", "name", "issue_fee", "monthly_fee", "delivery_subsidy", "free_condition_text", "limits_json", "is_active"},
		orderBy: "name",
		scan:    selectCatalog[models.TariffPlan],
	},
}

func catalogTableFor(kind models.ReferenceKind) (catalogTable, error) {
	t, ok := catalogTables[kind]
	if !ok {
		return catalogTable{}, fmt.Errorf("unknown reference kind: %s", kind)
	}
	return t, nil
}

func (t catalogTable) selectQuery() string {
	return `SELECT id, ` + strings.Join(t.columns, ", ") + ` FROM ` + t.table
}

// selectCatalog scans rows of one catalog type and erases the type for the caller
func selectCatalog[T any, PT interface {
	*T
	models.CatalogEntry
}](ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) ([]models.CatalogEntry, error) {
	var rows []T
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	entries := make([]models.CatalogEntry, len(rows))
	for i := range rows {
		entries[i] = PT(&rows[i])
	}
	return entries, nil
}

const statusColumns = `id, entity_type, code, name, sort_order`

// GetStatusByCode retrieves a status by its (entity_type, code) key
func (dao *ReferenceDAO) GetStatusByCode(ctx context.Context, entity models.EntityType, code string) (*models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM ref_status WHERE entity_type = ? AND code = ?`

	var status models.Status
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &status, conn.Rebind(query), entity, code); err != nil {
		return nil, fmt.Errorf("failed to get status %s/%s: %w", entity, code, translate(err))
	}
	return &status, nil
}

// GetStatusByID retrieves a status by id
func (dao *ReferenceDAO) GetStatusByID(ctx context.Context, id int64) (*models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM ref_status WHERE id = ?`

	var status models.Status
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &status, conn.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("failed to get status %d: %w", id, translate(err))
	}
	return &status, nil
}

// ListStatuses lists statuses of one entity type, or all of them when entity is empty
func (dao *ReferenceDAO) ListStatuses(ctx context.Context, entity models.EntityType) ([]models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM ref_status`
	args := []interface{}{}
	if entity != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entity)
	}
	query += ` ORDER BY entity_type, sort_order, id`

	var statuses []models.Status
	conn := dao.db.Conn(ctx)
	if err := sqlx.SelectContext(ctx, conn, &statuses, conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

// UpdateStatusDisplay changes the display name and order of a status. Codes are immutable.
func (dao *ReferenceDAO) UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) error {
	query := `UPDATE ref_status SET name = ?, sort_order = ? WHERE id = ?`

	conn := dao.db.Conn(ctx)
	result, err := conn.ExecContext(ctx, conn.Rebind(query), name, sortOrder, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("status %d: %w", id, ErrNotFound)
	}
	return nil
}

// Exists reports whether a reference row with the given id exists
func (dao *ReferenceDAO) Exists(ctx context.Context, kind models.ReferenceKind, id int64) (bool, error) {
	t, err := catalogTableFor(kind)
	if err != nil {
		return false, err
	}

	query := `SELECT COUNT(*) FROM ` + t.table + ` WHERE id = ?`

	var count int
	conn := dao.db.Conn(ctx)
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(query), id); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", kind, err)
	}
	return count > 0, nil
}

// LoadAll returns every status and all active catalog rows
func (dao *ReferenceDAO) LoadAll(ctx context.Context) (*models.ReferenceData, error) {
	statuses, err := dao.ListStatuses(ctx, "")
	if err != nil {
		return nil, err
	}

	data := &models.ReferenceData{Statuses: statuses}
	conn := dao.db.Conn(ctx)

	loads := []struct {
		dest  interface{}
		query string
	}{
		{&data.Branches, `SELECT id, code, name, city, address, phone, is_active FROM ref_branch WHERE is_active = TRUE ORDER BY name`},
		{&data.Channels, `SELECT id, code, name, is_active FROM ref_channel WHERE is_active = TRUE ORDER BY name`},
		{&data.DeliveryMethods, `SELECT id, code, name, base_cost, sla_days, is_active FROM ref_delivery_method WHERE is_active = TRUE ORDER BY name`},
		{&data.Vendors, `SELECT id, vendor_type, name, contacts, sla_days, is_active FROM ref_vendor WHERE is_active = TRUE ORDER BY name`},
		{&data.RejectReasons, `SELECT id, code, name, is_active FROM ref_reject_reason WHERE is_active = TRUE ORDER BY name`},
		{&data.Products, `SELECT id, code, name, payment_system, level, currency, term_months, is_virtual, metadata_json, is_active FROM ref_card_product WHERE is_active = TRUE ORDER BY name`},
		{&data.Tariffs, `SELECT id, code, name, issue_fee, monthly_fee, delivery_subsidy, free_condition_text, limits_json, is_active FROM ref_tariff_plan WHERE is_active = TRUE ORDER BY name`},
	}

	for _, load := range loads {
		if err := sqlx.SelectContext(ctx, conn, load.dest, load.query); err != nil {
			return nil, fmt.Errorf("failed to load reference data: %w", err)
		}
	}

	return data, nil
}

// ListCatalog lists the rows of one catalog, only the active ones when activeOnly is set
func (dao *ReferenceDAO) ListCatalog(ctx context.Context, kind models.ReferenceKind, activeOnly bool) ([]models.CatalogEntry, error) {
	t, err := catalogTableFor(kind)
	if err != nil {
		return nil, err
	}

	query := t.selectQuery()
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY ` + t.orderBy + `, id`

	conn := dao.db.Conn(ctx)
	entries, err := t.scan(ctx, conn, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return entries, nil
}

// GetCatalogEntry retrieves one catalog row by id
func (dao *ReferenceDAO) GetCatalogEntry(ctx context.Context, kind models.ReferenceKind, id int64) (models.CatalogEntry, error) {
	t, err := catalogTableFor(kind)
	if err != nil {
		return nil, err
	}

	query := t.selectQuery() + ` WHERE id = ?`

	conn := dao.db.Conn(ctx)
	entries, err := t.scan(ctx, conn, conn.Rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return entries[0], nil
}

// CreateCatalogEntry inserts a catalog row and sets its generated id
func (dao *ReferenceDAO) CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error {
	t, err := catalogTableFor(entry.Kind())
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + t.table + ` (` + strings.Join(t.columns, ", ") + `)
		VALUES (:` + strings.Join(t.columns, ", :") + `)`
	postgres := dao.db.Type() == config.DatabaseTypePostgres
	if postgres {
		query += ` RETURNING id`
	}

	conn := dao.db.Conn(ctx)
	bound, args, err := conn.BindNamed(query, entry)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", entry.Kind(), err)
	}

	var id int64
	if postgres {
		err = conn.QueryRowxContext(ctx, bound, args...).Scan(&id)
	} else {
		var result sql.Result
		if result, err = conn.ExecContext(ctx, bound, args...); err == nil {
			id, err = result.LastInsertId()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", entry.Kind(), translate(err))
	}

	entry.SetEntryID(id)
	return nil
}

// UpdateCatalogEntry overwrites every column of an existing catalog row
func (dao *ReferenceDAO) UpdateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error {
	t, err := catalogTableFor(entry.Kind())
	if err != nil {
		return err
	}

	sets := make([]string, len(t.columns))
	for i, col := range t.columns {
		sets[i] = col + ` = :` + col
	}
	query := `UPDATE ` + t.table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = :id`

	conn := dao.db.Conn(ctx)
	bound, args, err := conn.BindNamed(query, entry)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", entry.Kind(), err)
	}

	result, err := conn.ExecContext(ctx, bound, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", entry.Kind(), translate(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// MySQL reports 0 affected rows when nothing changed
	exists, err := dao.Exists(ctx, entry.Kind(), entry.EntryID())
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s %d: %w", entry.Kind(), entry.EntryID(), ErrNotFound)
	}
	return nil
}
