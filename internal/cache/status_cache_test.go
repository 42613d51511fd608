package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/dao/memory"
	"github.com/cardops/card-issuance-api/internal/models"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockBackend) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func newTestCache(backend Backend) (*StatusCache, *memory.References) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	refs := memory.NewStore(memory.DefaultReferenceData()).References()
	return NewStatusCache(refs, backend, "test:", time.Minute, nil, logger), refs
}

func TestStatusCache_MissLoadsAndStores(t *testing.T) {
	backend := &mockBackend{}
	cache, _ := newTestCache(backend)
	key := "test:status:code:card:ISSUED"

	backend.On("Get", mock.Anything, key).Return(nil, ErrMiss).Once()
	backend.On("Set", mock.Anything, key, mock.Anything, time.Minute).Return(nil).Once()

	status, err := cache.GetStatusByCode(context.Background(), models.EntityCard, models.CardStatusIssued)

	require.NoError(t, err)
	assert.Equal(t, models.CardStatusIssued, status.Code)
	backend.AssertExpectations(t)
}

func TestStatusCache_HitSkipsSource(t *testing.T) {
	backend := &mockBackend{}
	cache, _ := newTestCache(backend)
	cached, _ := json.Marshal(models.Status{ID: 99, EntityType: models.EntityBatch, Code: "SENT", Name: "From cache"})

	backend.On("Get", mock.Anything, "test:status:id:99").Return(cached, nil).Once()

	status, err := cache.GetStatusByID(context.Background(), 99)

	require.NoError(t, err)
	assert.Equal(t, "From cache", status.Name)
	backend.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusCache_BackendFailureFallsThrough(t *testing.T) {
	backend := &mockBackend{}
	cache, _ := newTestCache(backend)

	backend.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis: connection refused"))
	backend.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	status, err := cache.GetStatusByCode(context.Background(), models.EntityApplication, models.AppStatusNew)

	require.NoError(t, err)
	assert.Equal(t, models.AppStatusNew, status.Code)
}

func TestStatusCache_UpdateInvalidates(t *testing.T) {
	backend := &mockBackend{}
	cache, refs := newTestCache(backend)
	ctx := context.Background()

	sent, err := refs.GetStatusByCode(ctx, models.EntityBatch, models.BatchStatusSent)
	require.NoError(t, err)

	backend.On("Delete", mock.Anything, []string{"test:status:id:7", "test:status:code:batch:SENT"}).Return(nil).Once()

	require.Equal(t, int64(7), sent.ID)
	require.NoError(t, cache.UpdateStatusDisplay(ctx, sent.ID, "Shipped", 2))

	updated, err := refs.GetStatusByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", updated.Name)
	backend.AssertExpectations(t)
}
