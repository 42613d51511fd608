package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSequenceStore is a mock implementation of SequenceStore
type MockSequenceStore struct {
	mock.Mock
}

func (m *MockSequenceStore) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}
