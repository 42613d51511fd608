package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cardops/card-issuance-api/internal/models"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events []models.StatusChangedEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
