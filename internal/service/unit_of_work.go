package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/models"
)

type pendingEventsKey struct{}

type pendingEvents struct {
	events []models.StatusChangedEvent
}

func queueEvent(ctx context.Context, event models.StatusChangedEvent) {
	if p, ok := ctx.Value(pendingEventsKey{}).(*pendingEvents); ok {
		p.events = append(p.events, event)
	}
}

// unitOfWork runs an operation in one transaction and publishes the
// status events it queued once that transaction has committed
type unitOfWork struct {
	tx        Transactor
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

func newUnitOfWork(tx Transactor, publisher EventPublisher, m *metrics.Metrics, logger *logrus.Logger) *unitOfWork {
	return &unitOfWork{tx: tx, publisher: publisher, metrics: m, logger: logger}
}

// run executes fn atomically. A call nested in another run joins it and publishes nothing itself.
func (u *unitOfWork) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(pendingEventsKey{}).(*pendingEvents); nested {
		return u.tx.WithTransaction(ctx, fn)
	}

	pending := &pendingEvents{}
	ctx = context.WithValue(ctx, pendingEventsKey{}, pending)
	if err := u.tx.WithTransaction(ctx, fn); err != nil {
		return err
	}

	u.publish(context.WithoutCancel(ctx), pending.events)
	return nil
}

// publish never fails the operation: the ledger row is already committed and is the source of truth
func (u *unitOfWork) publish(ctx context.Context, events []models.StatusChangedEvent) {
	if u.publisher == nil || len(events) == 0 {
		return
	}
	err := u.publisher.Publish(ctx, events)
	u.metrics.IncrementEvents(len(events), err)
	if err != nil {
		u.logger.WithError(err).WithField("count", len(events)).Error("Failed to publish status events")
	}
}
