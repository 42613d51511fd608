package service

import (
	"context"
	"strings"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/pkg/utils"
)

// DefaultFeeCurrency applies when a fee is recorded without a currency
const DefaultFeeCurrency = "RUB"

// FeeService records fee facts against applications. Amounts are stored verbatim.
type FeeService struct {
	lifecycle
}

// NewFeeService creates a new FeeService
func NewFeeService(deps Deps) *FeeService {
	return &FeeService{lifecycle: newLifecycle(deps)}
}

// Record appends a fee operation to an existing application
func (s *FeeService) Record(ctx context.Context, applicationID string, input models.FeeOperationInput) (*models.FeeOperation, error) {
	if !models.ValidFeeOpTypes[input.OpType] {
		return nil, serviceerror.Validation("unknown fee operation type: %s", input.OpType)
	}
	if input.Amount.IsNegative() {
		return nil, serviceerror.Validation("fee amount must not be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = DefaultFeeCurrency
	}
	occurredAt := s.clock()
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	if _, err := s.stores.Applications.GetByID(ctx, applicationID); err != nil {
		return nil, lookupErr("application", applicationID, err)
	}

	op := &models.FeeOperation{
		ID:            utils.GenerateID(),
		ApplicationID: applicationID,
		OpType:        input.OpType,
		Amount:        input.Amount,
		Currency:      currency,
		OccurredAt:    occurredAt,
		Meta:          input.Meta,
	}
	if err := s.stores.Fees.Create(ctx, op); err != nil {
		return nil, storageErr("record fee operation", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": applicationID,
		"op_type":        op.OpType,
		"amount":         op.Amount.String(),
	}).Info("Fee operation recorded")
	return op, nil
}

// List returns the fee operations of an application, oldest first
func (s *FeeService) List(ctx context.Context, applicationID string) ([]models.FeeOperation, error) {
	if _, err := s.stores.Applications.GetByID(ctx, applicationID); err != nil {
		return nil, lookupErr("application", applicationID, err)
	}
	ops, err := s.stores.Fees.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, storageErr("list fee operations", err)
	}
	if ops == nil {
		ops = []models.FeeOperation{}
	}
	return ops, nil
}
