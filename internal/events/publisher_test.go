package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/models"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisher(writer, quietLogger())
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	events := []models.StatusChangedEvent{
		{EntityType: models.EntityBatch, EntityID: "b-1", StatusCode: models.BatchStatusReceived, ChangedAt: at, ChangedBy: "ops"},
		{EntityType: models.EntityCard, EntityID: "c-1", StatusCode: models.CardStatusIssued, ChangedAt: at, ChangedBy: "System"},
	}

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 2 || string(msgs[1].Key) != "c-1" {
			return false
		}
		var decoded models.StatusChangedEvent
		if err := json.Unmarshal(msgs[1].Value, &decoded); err != nil {
			return false
		}
		return decoded.StatusCode == models.CardStatusIssued && string(msgs[1].Headers[0].Value) == "card"
	})).Return(nil).Once()

	require.NoError(t, publisher.Publish(context.Background(), events))
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_PublishEmpty(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisher(writer, quietLogger())

	require.NoError(t, publisher.Publish(context.Background(), nil))
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisher(writer, quietLogger())
	brokerDown := errors.New("dial tcp: connection refused")
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(brokerDown)

	err := publisher.Publish(context.Background(), []models.StatusChangedEvent{{EntityID: "a-1"}})

	assert.ErrorIs(t, err, brokerDown)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	writer.On("Close").Return(nil)

	require.NoError(t, NewKafkaPublisher(writer, quietLogger()).Close())
	writer.AssertExpectations(t)
}
