package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cardops/card-issuance-api/internal/models"
)

// MockReportStore is a mock implementation of ReportStore
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) ListApplicationFacts(ctx context.Context, from, to time.Time) ([]models.ApplicationFact, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApplicationFact), args.Error(1)
}
