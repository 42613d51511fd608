package service

import (
	"context"
	"time"

	"github.com/cardops/card-issuance-api/internal/models"
)

// Transactor runs fn inside one unit of work. Nested calls join the outer unit.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReferenceStore reads the status catalog and maintains the lookup catalogs
type ReferenceStore interface {
	GetStatusByCode(ctx context.Context, entity models.EntityType, code string) (*models.Status, error)
	GetStatusByID(ctx context.Context, id int64) (*models.Status, error)
	ListStatuses(ctx context.Context, entity models.EntityType) ([]models.Status, error)
	UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) error
	Exists(ctx context.Context, kind models.ReferenceKind, id int64) (bool, error)
	LoadAll(ctx context.Context) (*models.ReferenceData, error)
	ListCatalog(ctx context.Context, kind models.ReferenceKind, activeOnly bool) ([]models.CatalogEntry, error)
	GetCatalogEntry(ctx context.Context, kind models.ReferenceKind, id int64) (models.CatalogEntry, error)
	CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error
	UpdateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error
}

// SequenceStore hands out values of named atomic counters
type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

// HistoryStore is the append-only status ledger
type HistoryStore interface {
	Append(ctx context.Context, entry *models.StatusHistory) error
	ListByEntity(ctx context.Context, entity models.EntityType, entityID string) ([]models.StatusHistory, error)
}

// ClientStore persists client profiles
type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, c *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
}

// ApplicationStore persists card applications
type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	Update(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetForUpdate(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
}

// BatchStore persists issue batches and their items
type BatchStore interface {
	Create(ctx context.Context, b *models.Batch) error
	Update(ctx context.Context, b *models.Batch) error
	GetByID(ctx context.Context, id string) (*models.Batch, error)
	GetForUpdate(ctx context.Context, id string) (*models.Batch, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Batch, error)
	List(ctx context.Context, limit, offset int) ([]models.Batch, int, error)
	AddItem(ctx context.Context, item *models.IssueBatchItem) error
	ListItems(ctx context.Context, batchID string) ([]models.IssueBatchItem, error)
	CountItems(ctx context.Context, batchID string) (int, error)
}

// CardStore persists cards
type CardStore interface {
	Create(ctx context.Context, c *models.Card) error
	Update(ctx context.Context, c *models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	GetForUpdate(ctx context.Context, id string) (*models.Card, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Card, error)
	List(ctx context.Context, limit, offset int) ([]models.Card, int, error)
}

// FeeStore records fee operations
type FeeStore interface {
	Create(ctx context.Context, op *models.FeeOperation) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.FeeOperation, error)
}

// ReportStore reads the report projection
type ReportStore interface {
	ListApplicationFacts(ctx context.Context, from, to time.Time) ([]models.ApplicationFact, error)
}

// EventPublisher delivers status change events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, events []models.StatusChangedEvent) error
}

// Stores bundles every persistence dependency of the services
type Stores struct {
	Tx           Transactor
	References   ReferenceStore
	Sequences    SequenceStore
	History      HistoryStore
	Clients      ClientStore
	Applications ApplicationStore
	Batches      BatchStore
	Cards        CardStore
	Fees         FeeStore
	Reports      ReportStore
}
