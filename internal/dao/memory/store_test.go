package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/models"
)

func newTestStore() *Store {
	return NewStore(DefaultReferenceData())
}

func TestWithTransaction_RestoresSnapshotOnError(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Clients().Create(ctx, &models.Client{ID: "cl-1"}))
		require.NoError(t, store.History().Append(ctx, &models.StatusHistory{EntityType: models.EntityCard, EntityID: "c-1", StatusID: 9}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Clients().GetByID(ctx, "cl-1")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	rows, err := store.History().ListByEntity(ctx, models.EntityCard, "c-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWithTransaction_RestoresSnapshotOnPanic(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = store.WithTransaction(ctx, func(ctx context.Context) error {
			_ = store.Clients().Create(ctx, &models.Client{ID: "cl-1"})
			panic("unexpected")
		})
	})

	_, err := store.Clients().GetByID(ctx, "cl-1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		inner := store.WithTransaction(ctx, func(ctx context.Context) error {
			return store.Clients().Create(ctx, &models.Client{ID: "cl-1"})
		})
		require.NoError(t, inner)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Clients().GetByID(ctx, "cl-1")
	assert.ErrorIs(t, err, dao.ErrNotFound, "inner writes roll back with the outer unit")
}

func TestNext_ConcurrentCallersGetDistinctValues(t *testing.T) {
	store := newTestStore()
	const callers = 64

	values := make([]int64, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			v, err := store.Next(context.Background(), dao.SeqApplication)
			values[i] = v
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, callers)
	for _, v := range values {
		assert.False(t, seen[v], "value %d handed out twice", v)
		seen[v] = true
	}
	for want := int64(1); want <= callers; want++ {
		assert.True(t, seen[want], "missing %d", want)
	}
}

func TestNext_NotRolledBack(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_ = store.WithTransaction(ctx, func(ctx context.Context) error {
		v, err := store.Next(ctx, dao.SeqCard)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		return errors.New("abort")
	})

	v, err := store.Next(ctx, dao.SeqCard)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = store.Next(ctx, "unknown_seq")
	assert.Error(t, err)
}

func TestUniqueness(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Batches().Create(ctx, &models.Batch{ID: "b-1", CreatedAt: now}))
	require.NoError(t, store.Batches().Create(ctx, &models.Batch{ID: "b-2", CreatedAt: now}))
	require.NoError(t, store.Batches().AddItem(ctx, &models.IssueBatchItem{ID: "i-1", BatchID: "b-1", ApplicationID: "app-1"}))

	err := store.Batches().AddItem(ctx, &models.IssueBatchItem{ID: "i-2", BatchID: "b-2", ApplicationID: "app-1"})
	assert.ErrorIs(t, err, dao.ErrDuplicate)

	require.NoError(t, store.Cards().Create(ctx, &models.Card{ID: "c-1", ApplicationID: "app-1"}))
	err = store.Cards().Create(ctx, &models.Card{ID: "c-2", ApplicationID: "app-1"})
	assert.ErrorIs(t, err, dao.ErrDuplicate)
}

func TestReferences(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	refs := store.References()

	status, err := refs.GetStatusByCode(ctx, models.EntityBatch, models.BatchStatusSent)
	require.NoError(t, err)
	assert.Equal(t, models.EntityBatch, status.EntityType)

	_, err = refs.GetStatusByCode(ctx, models.EntityBatch, models.CardStatusIssued)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	ok, err := refs.Exists(ctx, models.RefVendor, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = refs.Exists(ctx, models.RefVendor, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, refs.UpdateStatusDisplay(ctx, status.ID, "Shipped", 7))
	updated, err := refs.GetStatusByID(ctx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", updated.Name)
	assert.Equal(t, models.BatchStatusSent, updated.Code)

	statuses, err := refs.ListStatuses(ctx, models.EntityCard)
	require.NoError(t, err)
	require.Len(t, statuses, 6)
	assert.Equal(t, models.CardStatusCreated, statuses[0].Code)
}

func TestReferences_Catalogs(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	refs := store.References()

	channel := &models.Channel{Code: "partner", Name: "Partner bank", IsActive: true}
	require.NoError(t, refs.CreateCatalogEntry(ctx, channel))
	assert.Equal(t, int64(4), channel.ID)

	err := refs.CreateCatalogEntry(ctx, &models.Channel{Code: "partner", Name: "Again", IsActive: true})
	assert.ErrorIs(t, err, dao.ErrDuplicate)

	ok, err := refs.Exists(ctx, models.RefChannel, channel.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	channel.IsActive = false
	require.NoError(t, refs.UpdateCatalogEntry(ctx, channel))

	active, err := refs.ListCatalog(ctx, models.RefChannel, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)
	all, err := refs.ListCatalog(ctx, models.RefChannel, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	data, err := refs.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Channels, 3)

	// renaming onto another row's code is rejected
	err = refs.UpdateCatalogEntry(ctx, &models.Channel{ID: channel.ID, Code: "web", Name: "Web"})
	assert.ErrorIs(t, err, dao.ErrDuplicate)

	err = refs.UpdateCatalogEntry(ctx, &models.Channel{ID: 99, Code: "x", Name: "x"})
	assert.ErrorIs(t, err, dao.ErrNotFound)

	loaded, err := refs.GetCatalogEntry(ctx, models.RefChannel, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, "partner", loaded.EntryCode())
	assert.False(t, loaded.Active())
}

func TestReferences_CatalogEditsRollBack(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	refs := store.References()

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := refs.UpdateCatalogEntry(ctx, &models.Vendor{ID: 1, VendorType: "plastic", Name: "Renamed", SLADays: 7, IsActive: true}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	vendor, err := refs.GetCatalogEntry(ctx, models.RefVendor, 1)
	require.NoError(t, err)
	assert.Equal(t, "CardPlast", vendor.(*models.Vendor).Name)
}
