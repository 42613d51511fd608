package service

import (
	"context"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/pkg/utils"
)

// ClientService manages client profiles. Clients have no status machine.
type ClientService struct {
	lifecycle
}

// NewClientService creates a new ClientService
func NewClientService(deps Deps) *ClientService {
	return &ClientService{lifecycle: newLifecycle(deps)}
}

// Create registers a client
func (s *ClientService) Create(ctx context.Context, fields models.ClientFields) (*models.Client, error) {
	if err := normalizeClient(&fields); err != nil {
		return nil, err
	}

	now := s.clock()
	client := &models.Client{
		ID:           utils.GenerateID(),
		ClientFields: fields,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.stores.Clients.Create(ctx, client); err != nil {
		return nil, storageErr("create client", err)
	}

	s.logger.WithField("client_id", client.ID).Info("Client created")
	return client, nil
}

// Update overwrites the whole profile
func (s *ClientService) Update(ctx context.Context, id string, fields models.ClientFields) (*models.Client, error) {
	if err := normalizeClient(&fields); err != nil {
		return nil, err
	}

	var client *models.Client
	err := s.stores.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		client, err = s.stores.Clients.GetByID(ctx, id)
		if err != nil {
			return lookupErr("client", id, err)
		}
		client.ClientFields = fields
		client.UpdatedAt = s.clock()
		if err := s.stores.Clients.Update(ctx, client); err != nil {
			return lookupErr("client", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.stores.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("client", id, err)
	}
	return client, nil
}

// List searches clients by name or document number
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	filter.Query = utils.SanitizeString(filter.Query)
	clients, total, err := s.stores.Clients.List(ctx, filter)
	if err != nil {
		return nil, 0, storageErr("list clients", err)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, total, nil
}

func normalizeClient(fields *models.ClientFields) error {
	fields.FullName = utils.SanitizeString(fields.FullName)
	if err := utils.ValidateRequired("fullName", fields.FullName); err != nil {
		return serviceerror.Validation("%v", err)
	}
	if fields.ClientType == "" {
		fields.ClientType = "person"
	}
	if fields.KYCStatus == "" {
		fields.KYCStatus = models.KYCStatusNew
	}
	if fields.Email != nil && *fields.Email != "" {
		if err := utils.ValidateEmail(*fields.Email); err != nil {
			return serviceerror.Validation("%v", err)
		}
	}

	doc, err := utils.NormalizeDocNumber(fields.DocType, fields.DocNumber)
	if err != nil {
		return serviceerror.Validation("%v", err)
	}
	fields.DocNumber = doc
	return nil
}
