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

// ApplicationService owns the application state machine
type ApplicationService struct {
	lifecycle
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(deps Deps) *ApplicationService {
	return &ApplicationService{lifecycle: newLifecycle(deps)}
}

// Create registers a new application in status NEW
func (s *ApplicationService) Create(ctx context.Context, fields models.ApplicationFields, actor string) (app *models.Application, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("application.create", start, err) }()

	if err := s.validateFields(ctx, &fields); err != nil {
		return nil, err
	}

	number, err := s.numbering.nextApplication(ctx)
	if err != nil {
		return nil, err
	}

	actor = s.actor(actor)
	now := s.clock()
	app = &models.Application{
		ID:                utils.GenerateID(),
		ApplicationNo:     number,
		ApplicationFields: fields,
		RequestedAt:       now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.uow.run(ctx, func(ctx context.Context) error {
		status, err := s.status(ctx, models.EntityApplication, models.AppStatusNew)
		if err != nil {
			return err
		}
		app.StatusID = status.ID
		app.StatusCode = status.Code

		if err := s.stores.Applications.Create(ctx, app); err != nil {
			return storageErr("create application", err)
		}
		return s.record(ctx, models.EntityApplication, app.ID, status, actor, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": app.ID,
		"application_no": app.ApplicationNo,
	}).Info("Application created")
	return app, nil
}

// Update overwrites every caller-supplied field. Only NEW and IN_REVIEW applications are editable.
func (s *ApplicationService) Update(ctx context.Context, id string, fields models.ApplicationFields) (*models.Application, error) {
	if err := s.validateFields(ctx, &fields); err != nil {
		return nil, err
	}

	var app *models.Application
	err := s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.stores.Applications.GetForUpdate(ctx, id)
		if err != nil {
			return lookupErr("application", id, err)
		}
		if !models.EditableApplicationStatuses[app.StatusCode] {
			return serviceerror.InvalidState(app.StatusCode, "application in status %s can no longer be edited", app.StatusCode)
		}

		app.ApplicationFields = fields
		app.UpdatedAt = s.clock()
		if err := s.stores.Applications.Update(ctx, app); err != nil {
			return storageErr("update application", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// StartReview moves a NEW application to IN_REVIEW
func (s *ApplicationService) StartReview(ctx context.Context, id, actor string) (*models.Application, error) {
	actor = s.actor(actor)

	var app *models.Application
	err := s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.stores.Applications.GetForUpdate(ctx, id)
		if err != nil {
			return lookupErr("application", id, err)
		}
		return s.transition(ctx, app, models.AppStatusInReview, actor)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Decide records an approve or reject verdict on a NEW or IN_REVIEW application.
// KYC values are stored exactly as given.
func (s *ApplicationService) Decide(ctx context.Context, id string, input models.DecisionInput, actor string) (app *models.Application, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("application.decide", start, err) }()

	if !input.Decision.IsValid() {
		return nil, serviceerror.Validation("decision must be %q or %q", models.DecisionApprove, models.DecisionReject)
	}

	target := models.AppStatusApproved
	if input.Decision == models.DecisionReject {
		target = models.AppStatusRejected
		if input.RejectReasonID == nil {
			return nil, serviceerror.ValidationWithCode(serviceerror.CodeRejectReasonEmpty, nil, "reject reason is required for rejection")
		}
		if err := s.requireReference(ctx, models.RefRejectReason, *input.RejectReasonID); err != nil {
			return nil, err
		}
	}

	actor = s.actor(actor)
	err = s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.stores.Applications.GetForUpdate(ctx, id)
		if err != nil {
			return lookupErr("application", id, err)
		}

		now := s.clock()
		app.KYCScore = input.KYCScore
		app.KYCResult = input.KYCResult
		app.KYCNotes = input.KYCNotes
		app.DecisionAt = &now
		app.DecisionBy = input.DecisionBy
		if app.DecisionBy == nil {
			app.DecisionBy = &actor
		}

		if target == models.AppStatusApproved {
			app.RejectReasonID = nil
			app.PlannedIssueDate = input.PlannedIssueDate
		} else {
			app.RejectReasonID = input.RejectReasonID
		}

		return s.transitionAt(ctx, app, target, actor, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": app.ID,
		"decision":       input.Decision,
	}).Info("Application decided")
	return app, nil
}

// assignToBatch moves an APPROVED application to IN_BATCH. Callers hold the application row lock.
func (s *ApplicationService) assignToBatch(ctx context.Context, app *models.Application, actor string) error {
	if app.StatusCode != models.AppStatusApproved {
		return serviceerror.InvalidState(app.StatusCode, "application %s must be %s to join a batch", app.ApplicationNo, models.AppStatusApproved)
	}
	return s.transition(ctx, app, models.AppStatusInBatch, actor)
}

func (s *ApplicationService) transition(ctx context.Context, app *models.Application, target, actor string) error {
	return s.transitionAt(ctx, app, target, actor, s.clock())
}

func (s *ApplicationService) transitionAt(ctx context.Context, app *models.Application, target, actor string, at time.Time) error {
	status, err := s.moveTo(ctx, models.EntityApplication, app.StatusCode, target)
	if err != nil {
		return err
	}

	app.StatusID = status.ID
	app.StatusCode = status.Code
	app.UpdatedAt = at
	if err := s.stores.Applications.Update(ctx, app); err != nil {
		return storageErr("update application", err)
	}
	return s.record(ctx, models.EntityApplication, app.ID, status, actor, at)
}

// Get returns one application
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.stores.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("application", id, err)
	}
	if err := s.attachSummaries(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns a filtered page of applications and the total match count
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	for _, code := range filter.StatusCodes {
		if _, ok := models.ApplicationTransitions[code]; !ok {
			return nil, 0, serviceerror.Validation("unknown application status: %s", code)
		}
	}

	apps, total, err := s.stores.Applications.List(ctx, filter)
	if err != nil {
		return nil, 0, storageErr("list applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	for i := range apps {
		if err := s.attachSummaries(ctx, &apps[i]); err != nil {
			return nil, 0, err
		}
	}
	return apps, total, nil
}

// attachSummaries fills the batch and card an application ended up in, if any
func (s *ApplicationService) attachSummaries(ctx context.Context, app *models.Application) error {
	batch, err := s.stores.Batches.GetByApplicationID(ctx, app.ID)
	switch {
	case errors.Is(err, dao.ErrNotFound):
	case err != nil:
		return storageErr("load batch of application", err)
	default:
		app.Batch = &models.BatchBrief{ID: batch.ID, BatchNo: batch.BatchNo, StatusCode: batch.StatusCode}
	}

	card, err := s.stores.Cards.GetByApplicationID(ctx, app.ID)
	switch {
	case errors.Is(err, dao.ErrNotFound):
	case err != nil:
		return storageErr("load card of application", err)
	default:
		app.Card = &models.CardBrief{ID: card.ID, CardNo: card.CardNo, StatusCode: card.StatusCode, PANMasked: card.PANMasked}
	}
	return nil
}

// History returns the ledger of an application in chronological order
func (s *ApplicationService) History(ctx context.Context, id string) ([]models.StatusHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return historyOf(ctx, s.stores.History, models.EntityApplication, id)
}

// validateFields checks that every referenced entity exists and fills defaults
func (s *ApplicationService) validateFields(ctx context.Context, fields *models.ApplicationFields) error {
	if fields.ClientID == "" {
		return serviceerror.Validation("clientId is required")
	}
	if _, err := s.stores.Clients.GetByID(ctx, fields.ClientID); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return serviceerror.ValidationWithCode(serviceerror.CodeUnknownReference, nil, "unknown client: %s", fields.ClientID)
		}
		return storageErr("load client", err)
	}

	refs := []struct {
		kind models.ReferenceKind
		id   int64
	}{
		{models.RefCardProduct, fields.ProductID},
		{models.RefTariffPlan, fields.TariffID},
		{models.RefChannel, fields.ChannelID},
		{models.RefBranch, fields.BranchID},
		{models.RefDeliveryMethod, fields.DeliveryMethodID},
	}
	for _, ref := range refs {
		if err := s.requireReference(ctx, ref.kind, ref.id); err != nil {
			return err
		}
	}

	if fields.Priority == "" {
		fields.Priority = models.PriorityNormal
	}
	return nil
}
