package service

import (
	"context"
	"errors"
	"time"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/pkg/utils"
)

// BatchService owns vendor production batches and the batch state machine
type BatchService struct {
	lifecycle
	applications *ApplicationService
	cards        *CardService
}

// NewBatchService creates a new BatchService
func NewBatchService(deps Deps, applications *ApplicationService, cards *CardService) *BatchService {
	return &BatchService{
		lifecycle:    newLifecycle(deps),
		applications: applications,
		cards:        cards,
	}
}

// Create opens a batch for a vendor in status CREATED
func (s *BatchService) Create(ctx context.Context, input models.BatchCreateInput, actor string) (*models.Batch, error) {
	if err := s.requireReference(ctx, models.RefVendor, input.VendorID); err != nil {
		return nil, err
	}

	number, err := s.numbering.nextBatch(ctx)
	if err != nil {
		return nil, err
	}

	actor = s.actor(actor)
	now := s.clock()
	batch := &models.Batch{
		ID:            utils.GenerateID(),
		BatchNo:       number,
		VendorID:      input.VendorID,
		PlannedSendAt: input.PlannedSendAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.uow.run(ctx, func(ctx context.Context) error {
		status, err := s.status(ctx, models.EntityBatch, models.BatchStatusCreated)
		if err != nil {
			return err
		}
		batch.StatusID = status.ID
		batch.StatusCode = status.Code

		if err := s.stores.Batches.Create(ctx, batch); err != nil {
			return storageErr("create batch", err)
		}
		return s.record(ctx, models.EntityBatch, batch.ID, status, actor, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"batch_id": batch.ID,
		"batch_no": batch.BatchNo,
	}).Info("Batch created")
	return batch, nil
}

// AddItems puts APPROVED applications into a batch and moves them to IN_BATCH.
// The whole list is one unit of work: any failing application leaves the batch unchanged.
func (s *BatchService) AddItems(ctx context.Context, batchID string, applicationIDs []string, actor string) (items []models.IssueBatchItem, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("batch.add_items", start, err) }()

	if len(applicationIDs) == 0 {
		return nil, serviceerror.Validation("applicationIds must not be empty")
	}

	actor = s.actor(actor)
	err = s.uow.run(ctx, func(ctx context.Context) error {
		if _, err := s.stores.Batches.GetForUpdate(ctx, batchID); err != nil {
			return lookupErr("batch", batchID, err)
		}
		position, err := s.stores.Batches.CountItems(ctx, batchID)
		if err != nil {
			return storageErr("count batch items", err)
		}

		items = make([]models.IssueBatchItem, 0, len(applicationIDs))
		for _, appID := range applicationIDs {
			app, err := s.stores.Applications.GetForUpdate(ctx, appID)
			if err != nil {
				return lookupErr("application", appID, err)
			}
			if app.StatusCode != models.AppStatusApproved {
				return serviceerror.Validation("application %s must be %s to be added to a batch, it is %s",
					app.ApplicationNo, models.AppStatusApproved, app.StatusCode)
			}

			item := models.IssueBatchItem{
				ID:            utils.GenerateID(),
				BatchID:       batchID,
				ApplicationID: appID,
				Position:      position,
				CreatedAt:     s.clock(),
			}
			if err := s.stores.Batches.AddItem(ctx, &item); err != nil {
				if errors.Is(err, dao.ErrDuplicate) {
					return serviceerror.ValidationWithCode(serviceerror.CodeDuplicate, err,
						"application %s is already assigned to a batch", app.ApplicationNo)
				}
				return storageErr("add batch item", err)
			}
			position++

			if err := s.applications.assignToBatch(ctx, app, actor); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"batch_id": batchID,
		"count":    len(items),
	}).Info("Applications added to batch")
	return items, nil
}

// SetStatus moves a batch to SENT or RECEIVED and stamps the matching timestamp.
// Reaching RECEIVED issues the batch's cards in the same unit of work; the result
// of that cascade is returned and is nil for any other target.
func (s *BatchService) SetStatus(ctx context.Context, batchID, code, actor string) (batch *models.Batch, issued *models.IssueCardsResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("batch.set_status", start, err) }()

	if code != models.BatchStatusSent && code != models.BatchStatusReceived {
		return nil, nil, serviceerror.Validation("batch status must be %s or %s", models.BatchStatusSent, models.BatchStatusReceived)
	}

	actor = s.actor(actor)
	err = s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		batch, err = s.stores.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return lookupErr("batch", batchID, err)
		}

		status, err := s.moveTo(ctx, models.EntityBatch, batch.StatusCode, code)
		if err != nil {
			return err
		}

		now := s.clock()
		switch code {
		case models.BatchStatusSent:
			batch.SentAt = &now
		case models.BatchStatusReceived:
			batch.ReceivedAt = &now
		}
		batch.StatusID = status.ID
		batch.StatusCode = status.Code
		batch.UpdatedAt = now

		if err := s.stores.Batches.Update(ctx, batch); err != nil {
			return storageErr("update batch", err)
		}
		if err := s.record(ctx, models.EntityBatch, batch.ID, status, actor, now); err != nil {
			return err
		}

		if code == models.BatchStatusReceived {
			// receipt from the vendor means the cards now exist
			issued, err = s.cards.issueCards(ctx, batch.ID, actor)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"batch_id": batch.ID,
		"status":   batch.StatusCode,
	}).Info("Batch status changed")
	return batch, issued, nil
}

// Update overwrites the vendor and planned send date in any status.
// A nil VendorID keeps the vendor; a nil PlannedSendAt clears the date.
func (s *BatchService) Update(ctx context.Context, batchID string, input models.BatchUpdateInput) (*models.Batch, error) {
	if input.VendorID != nil {
		if err := s.requireReference(ctx, models.RefVendor, *input.VendorID); err != nil {
			return nil, err
		}
	}

	var batch *models.Batch
	err := s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		batch, err = s.stores.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return lookupErr("batch", batchID, err)
		}

		if input.VendorID != nil {
			batch.VendorID = *input.VendorID
		}
		batch.PlannedSendAt = input.PlannedSendAt
		batch.UpdatedAt = s.clock()

		if err := s.stores.Batches.Update(ctx, batch); err != nil {
			return storageErr("update batch", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Get returns a batch with its items in insertion order
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.stores.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("batch", id, err)
	}
	items, err := s.stores.Batches.ListItems(ctx, id)
	if err != nil {
		return nil, storageErr("list batch items", err)
	}
	if items == nil {
		items = []models.IssueBatchItem{}
	}
	batch.Items = items
	return batch, nil
}

// List returns a page of batches, newest first
func (s *BatchService) List(ctx context.Context, limit, offset int) ([]models.Batch, int, error) {
	batches, total, err := s.stores.Batches.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, storageErr("list batches", err)
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	return batches, total, nil
}

// History returns the ledger of a batch in chronological order
func (s *BatchService) History(ctx context.Context, id string) ([]models.StatusHistory, error) {
	if _, err := s.stores.Batches.GetByID(ctx, id); err != nil {
		return nil, lookupErr("batch", id, err)
	}
	return historyOf(ctx, s.stores.History, models.EntityBatch, id)
}
