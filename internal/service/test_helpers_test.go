package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/dao/memory"
	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service/mocks"
)

// stepClock returns strictly increasing times, one minute apart
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

// TestSetup wires every service over one in-memory store
type TestSetup struct {
	Store     *memory.Store
	Publisher *mocks.MockEventPublisher
	Metrics   *metrics.Metrics
	Clock     *stepClock

	Clients      *ClientService
	Applications *ApplicationService
	Batches      *BatchService
	Cards        *CardService
	Fees         *FeeService
	References   *ReferenceService
	Reports      *ReportService
}

func memoryStores(store *memory.Store) Stores {
	return Stores{
		Tx:           store,
		References:   store.References(),
		Sequences:    store,
		History:      store.History(),
		Clients:      store.Clients(),
		Applications: store.Applications(),
		Batches:      store.Batches(),
		Cards:        store.Cards(),
		Fees:         store.Fees(),
		Reports:      store.Reports(),
	}
}

func newTestDeps(store *memory.Store, publisher EventPublisher, clock *stepClock) Deps {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return Deps{
		Stores:    memoryStores(store),
		Publisher: publisher,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Logger:    logger,
		Clock:     clock.Now,
	}
}

// NewTestSetup creates a setup whose publisher accepts every event
func NewTestSetup(t *testing.T) *TestSetup {
	t.Helper()

	publisher := &mocks.MockEventPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return newTestSetupWith(publisher)
}

func newTestSetupWith(publisher *mocks.MockEventPublisher) *TestSetup {
	store := memory.NewStore(memory.DefaultReferenceData())
	clock := newStepClock()
	deps := newTestDeps(store, publisher, clock)

	services := NewServices(deps, Options{})
	return &TestSetup{
		Store:        store,
		Publisher:    publisher,
		Metrics:      deps.Metrics,
		Clock:        clock,
		Clients:      services.Clients,
		Applications: services.Applications,
		Batches:      services.Batches,
		Cards:        services.Cards,
		Fees:         services.Fees,
		References:   services.References,
		Reports:      services.Reports,
	}
}

func (s *TestSetup) newClient(t *testing.T) *models.Client {
	t.Helper()
	client, err := s.Clients.Create(context.Background(), models.ClientFields{FullName: "Ivan Petrov"})
	require.NoError(t, err)
	return client
}

func validFields(clientID string) models.ApplicationFields {
	return models.ApplicationFields{
		ClientID:            clientID,
		ProductID:           1,
		TariffID:            1,
		ChannelID:           1,
		BranchID:            1,
		DeliveryMethodID:    1,
		ConsentPersonalData: true,
	}
}

func (s *TestSetup) newApplication(t *testing.T) *models.Application {
	t.Helper()
	app, err := s.Applications.Create(context.Background(), validFields(s.newClient(t).ID), "operator")
	require.NoError(t, err)
	return app
}

func (s *TestSetup) approvedApplication(t *testing.T) *models.Application {
	t.Helper()
	app := s.newApplication(t)
	app, err := s.Applications.Decide(context.Background(), app.ID, models.DecisionInput{Decision: models.DecisionApprove}, "reviewer")
	require.NoError(t, err)
	return app
}

func (s *TestSetup) inReviewApplication(t *testing.T) *models.Application {
	t.Helper()
	app := s.newApplication(t)
	app, err := s.Applications.StartReview(context.Background(), app.ID, "reviewer")
	require.NoError(t, err)
	return app
}

func (s *TestSetup) rejectedApplication(t *testing.T) *models.Application {
	t.Helper()
	app := s.newApplication(t)
	app, err := s.Applications.Decide(context.Background(), app.ID, models.DecisionInput{
		Decision:       models.DecisionReject,
		RejectReasonID: int64Ptr(1),
	}, "reviewer")
	require.NoError(t, err)
	return app
}

func (s *TestSetup) inBatchApplication(t *testing.T) *models.Application {
	t.Helper()
	app := s.approvedApplication(t)
	batch := s.newBatch(t)
	_, err := s.Batches.AddItems(context.Background(), batch.ID, []string{app.ID}, "logistics")
	require.NoError(t, err)
	app, err = s.Applications.Get(context.Background(), app.ID)
	require.NoError(t, err)
	return app
}

func (s *TestSetup) newBatch(t *testing.T) *models.Batch {
	t.Helper()
	batch, err := s.Batches.Create(context.Background(), models.BatchCreateInput{VendorID: 1}, "logistics")
	require.NoError(t, err)
	return batch
}

func historyCodes(rows []models.StatusHistory) []string {
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.StatusCode)
	}
	return codes
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}
