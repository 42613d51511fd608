package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

// DefaultActor is recorded in the ledger when the caller supplies no identity
const DefaultActor = "System"

// Deps carries what every lifecycle service needs
type Deps struct {
	Stores    Stores
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
	// Clock defaults to time.Now in UTC
	Clock func() time.Time
	// DefaultActor replaces an empty actor
	DefaultActor string
}

// lifecycle holds the helpers shared by the application, batch and card services
type lifecycle struct {
	stores       Stores
	uow          *unitOfWork
	numbering    *Numbering
	metrics      *metrics.Metrics
	logger       *logrus.Logger
	clock        func() time.Time
	defaultActor string
}

func newLifecycle(deps Deps) lifecycle {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	actor := deps.DefaultActor
	if actor == "" {
		actor = DefaultActor
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return lifecycle{
		stores:       deps.Stores,
		uow:          newUnitOfWork(deps.Stores.Tx, deps.Publisher, deps.Metrics, logger),
		numbering:    NewNumbering(deps.Stores.Sequences, clock),
		metrics:      deps.Metrics,
		logger:       logger,
		clock:        clock,
		defaultActor: actor,
	}
}

func (l *lifecycle) actor(actor string) string {
	if actor == "" {
		return l.defaultActor
	}
	return actor
}

// status resolves a status row of the catalog. A missing row is a deployment fault, not caller input.
func (l *lifecycle) status(ctx context.Context, entity models.EntityType, code string) (*models.Status, error) {
	status, err := l.stores.References.GetStatusByCode(ctx, entity, code)
	if err != nil {
		return nil, serviceerror.Storage(fmt.Sprintf("resolve %s status %s", entity, code), err)
	}
	return status, nil
}

// moveTo checks current -> target against the entity's transition table and resolves the target row
func (l *lifecycle) moveTo(ctx context.Context, entity models.EntityType, current, target string) (*models.Status, error) {
	table, err := models.TransitionsFor(entity)
	if err != nil {
		return nil, serviceerror.Validation("%v", err)
	}
	if !table.Allows(current, target) {
		return nil, serviceerror.InvalidState(current, "%s transition %s -> %s is not allowed", entity, current, target)
	}
	return l.status(ctx, entity, target)
}

// record appends a ledger row and queues the matching event for publication after commit
func (l *lifecycle) record(ctx context.Context, entity models.EntityType, entityID string, status *models.Status, actor string, at time.Time) error {
	by := actor
	entry := &models.StatusHistory{
		EntityType: entity,
		EntityID:   entityID,
		StatusID:   status.ID,
		ChangedAt:  at,
		ChangedBy:  &by,
	}
	if err := l.stores.History.Append(ctx, entry); err != nil {
		return serviceerror.Storage("append status history", err)
	}

	queueEvent(ctx, models.StatusChangedEvent{
		EntityType: entity,
		EntityID:   entityID,
		StatusCode: status.Code,
		ChangedAt:  at,
		ChangedBy:  actor,
	})
	l.metrics.IncrementTransition(string(entity), status.Code)
	return nil
}

// requireReference fails with a validation error when a referenced catalog row does not exist
func (l *lifecycle) requireReference(ctx context.Context, kind models.ReferenceKind, id int64) error {
	ok, err := l.stores.References.Exists(ctx, kind, id)
	if err != nil {
		return serviceerror.Storage("check "+string(kind), err)
	}
	if !ok {
		return serviceerror.ValidationWithCode(serviceerror.CodeUnknownReference, nil, "unknown %s: %d", kind, id)
	}
	return nil
}

// lookupErr maps a store read failure onto the service taxonomy
func lookupErr(entity, id string, err error) error {
	if errors.Is(err, dao.ErrNotFound) {
		return serviceerror.NotFound(entity, id)
	}
	return storageErr("load "+entity, err)
}

// storageErr wraps err unless it already carries a service kind
func storageErr(op string, err error) error {
	if _, ok := serviceerror.As(err); ok {
		return err
	}
	return serviceerror.Storage(op, err)
}

func historyOf(ctx context.Context, history HistoryStore, entity models.EntityType, id string) ([]models.StatusHistory, error) {
	rows, err := history.ListByEntity(ctx, entity, id)
	if err != nil {
		return nil, storageErr("load status history", err)
	}
	if rows == nil {
		rows = []models.StatusHistory{}
	}
	return rows, nil
}
