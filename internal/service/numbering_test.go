package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/dao/memory"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/internal/service/mocks"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix   string
		year     int
		n        int64
		width    int
		expected string
	}{
		{PrefixApplication, 2025, 1, 6, "APP-2025-000001"},
		{PrefixBatch, 2025, 42, 6, "BAT-2025-000042"},
		{PrefixCard, 2026, 123456, 6, "CARD-2026-123456"},
		{PrefixCard, 2026, 1234567, 6, "CARD-2026-1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.prefix, tt.year, tt.n, tt.width))
		})
	}
}

func TestNumbering_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	store := memory.NewStore(memory.DefaultReferenceData())
	numbering := NewNumbering(store, func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) })

	const callers = 100
	var (
		mu      sync.Mutex
		numbers []string
	)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			n, err := numbering.nextApplication(context.Background())
			if err != nil {
				return err
			}
			mu.Lock()
			numbers = append(numbers, n)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Strings(numbers)
	expected := make([]string, 0, callers)
	for i := 1; i <= callers; i++ {
		expected = append(expected, Format(PrefixApplication, 2025, int64(i), numberWidth))
	}
	assert.Equal(t, expected, numbers)
}

func TestNumbering_YearIsLabelOnly(t *testing.T) {
	store := memory.NewStore(memory.DefaultReferenceData())
	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	numbering := NewNumbering(store, func() time.Time { return now })

	first, err := numbering.nextBatch(context.Background())
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	second, err := numbering.nextBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "BAT-2025-000001", first)
	assert.Equal(t, "BAT-2026-000002", second)
}

func TestNumbering_StoreFailure(t *testing.T) {
	sequences := &mocks.MockSequenceStore{}
	sequences.On("Next", mock.Anything, dao.SeqCard).Return(int64(0), errors.New("connection refused"))
	numbering := NewNumbering(sequences, time.Now)

	_, err := numbering.nextCard(context.Background())
	assert.True(t, serviceerror.IsStorage(err))
	sequences.AssertExpectations(t)
}

func TestNumbering_NotReusedAfterRollback(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	client := setup.newClient(t)

	_, err := setup.Applications.Create(ctx, validFields(client.ID), "operator")
	require.NoError(t, err)

	// the sequence is consumed before the unit of work starts; fail inside it
	original := setup.Applications.stores.History
	setup.Applications.stores.History = failingHistory{original}
	_, err = setup.Applications.Create(ctx, validFields(client.ID), "operator")
	require.Error(t, err)
	setup.Applications.stores.History = original

	app, err := setup.Applications.Create(ctx, validFields(client.ID), "operator")
	require.NoError(t, err)
	assert.Equal(t, "APP-2025-000003", app.ApplicationNo)

	apps, total, err := setup.Applications.List(ctx, models.ApplicationFilter{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, apps, 2)
}

type failingHistory struct {
	HistoryStore
}

func (failingHistory) Append(_ context.Context, _ *models.StatusHistory) error {
	return errors.New("ledger unavailable")
}
