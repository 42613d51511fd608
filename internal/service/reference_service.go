package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

// ReferenceService exposes the lookup catalogs. Statuses only allow display edits;
// the other catalogs are created and overwritten by operators.
type ReferenceService struct {
	lifecycle
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(deps Deps) *ReferenceService {
	return &ReferenceService{lifecycle: newLifecycle(deps)}
}

// LoadAll returns every active catalog
func (s *ReferenceService) LoadAll(ctx context.Context) (*models.ReferenceData, error) {
	data, err := s.stores.References.LoadAll(ctx)
	if err != nil {
		return nil, storageErr("load reference data", err)
	}
	return data, nil
}

// ListStatuses returns the status catalog, optionally for one entity type
func (s *ReferenceService) ListStatuses(ctx context.Context, entity models.EntityType) ([]models.Status, error) {
	if entity != "" && !entity.IsValid() {
		return nil, serviceerror.Validation("unknown entity type: %s", entity)
	}
	statuses, err := s.stores.References.ListStatuses(ctx, entity)
	if err != nil {
		return nil, storageErr("list statuses", err)
	}
	if statuses == nil {
		statuses = []models.Status{}
	}
	return statuses, nil
}

// UpdateStatusDisplay changes the display name and sort order of a status. Codes never change.
func (s *ReferenceService) UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) (*models.Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, serviceerror.Validation("status name must not be empty")
	}

	if err := s.stores.References.UpdateStatusDisplay(ctx, id, name, sortOrder); err != nil {
		return nil, lookupErr("status", strconv.FormatInt(id, 10), err)
	}
	status, err := s.stores.References.GetStatusByID(ctx, id)
	if err != nil {
		return nil, lookupErr("status", strconv.FormatInt(id, 10), err)
	}

	s.logger.WithFields(map[string]interface{}{
		"status_id": id,
		"code":      status.Code,
	}).Info("Status display updated")
	return status, nil
}

// ListCatalog returns one catalog, only the active rows when activeOnly is set
func (s *ReferenceService) ListCatalog(ctx context.Context, kind models.ReferenceKind, activeOnly bool) ([]models.CatalogEntry, error) {
	if !kind.IsValid() {
		return nil, serviceerror.Validation("unknown reference kind: %s", kind)
	}
	entries, err := s.stores.References.ListCatalog(ctx, kind, activeOnly)
	if err != nil {
		return nil, storageErr("list "+string(kind), err)
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, nil
}

// CreateCatalogEntry validates and stores a new catalog row
func (s *ReferenceService) CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	if err := entry.Normalize(); err != nil {
		return nil, serviceerror.Validation("invalid %s: %v", entry.Kind(), err)
	}
	entry.SetEntryID(0)

	if err := s.stores.References.CreateCatalogEntry(ctx, entry); err != nil {
		return nil, catalogWriteErr(entry, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"kind": entry.Kind(),
		"id":   entry.EntryID(),
	}).Info("Catalog entry created")
	return entry, nil
}

// UpdateCatalogEntry overwrites every field of the catalog row with the given id
func (s *ReferenceService) UpdateCatalogEntry(ctx context.Context, id int64, entry models.CatalogEntry) (models.CatalogEntry, error) {
	if err := entry.Normalize(); err != nil {
		return nil, serviceerror.Validation("invalid %s: %v", entry.Kind(), err)
	}
	entry.SetEntryID(id)

	if err := s.stores.References.UpdateCatalogEntry(ctx, entry); err != nil {
		return nil, catalogWriteErr(entry, err)
	}
	updated, err := s.stores.References.GetCatalogEntry(ctx, entry.Kind(), id)
	if err != nil {
		return nil, lookupErr(string(entry.Kind()), strconv.FormatInt(id, 10), err)
	}

	s.logger.WithFields(map[string]interface{}{
		"kind":   entry.Kind(),
		"id":     id,
		"active": updated.Active(),
	}).Info("Catalog entry updated")
	return updated, nil
}

func catalogWriteErr(entry models.CatalogEntry, err error) error {
	switch {
	case errors.Is(err, dao.ErrDuplicate):
		return serviceerror.ValidationWithCode(serviceerror.CodeDuplicate, err,
			"%s with code %s already exists", entry.Kind(), entry.EntryCode())
	case errors.Is(err, dao.ErrNotFound):
		return serviceerror.NotFound(string(entry.Kind()), strconv.FormatInt(entry.EntryID(), 10))
	}
	return storageErr("write "+string(entry.Kind()), err)
}
