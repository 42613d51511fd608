package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardChain = []string{
	CardStatusCreated,
	CardStatusIssued,
	CardStatusDelivered,
	CardStatusHanded,
	CardStatusActivated,
	CardStatusClosed,
}

func TestCardTransitions_OnlySingleSuccessorAllowed(t *testing.T) {
	for i, from := range cardChain {
		for j, to := range cardChain {
			allowed := CardTransitions.Allows(from, to)
			assert.Equal(t, j == i+1, allowed, "%s -> %s", from, to)
		}
	}
}

func TestCardTransitions_ClosedIsTerminal(t *testing.T) {
	assert.Empty(t, CardTransitions.Successors(CardStatusClosed))
}

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{AppStatusNew, AppStatusInReview, true},
		{AppStatusNew, AppStatusApproved, true},
		{AppStatusNew, AppStatusRejected, true},
		{AppStatusNew, AppStatusInBatch, false},
		{AppStatusInReview, AppStatusApproved, true},
		{AppStatusInReview, AppStatusRejected, true},
		{AppStatusInReview, AppStatusNew, false},
		{AppStatusApproved, AppStatusInBatch, true},
		{AppStatusApproved, AppStatusRejected, false},
		{AppStatusRejected, AppStatusApproved, false},
		{AppStatusInBatch, AppStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, ApplicationTransitions.Allows(tt.from, tt.to))
		})
	}
}

func TestBatchTransitions(t *testing.T) {
	assert.True(t, BatchTransitions.Allows(BatchStatusCreated, BatchStatusSent))
	assert.True(t, BatchTransitions.Allows(BatchStatusCreated, BatchStatusReceived))
	assert.True(t, BatchTransitions.Allows(BatchStatusSent, BatchStatusReceived))
	assert.False(t, BatchTransitions.Allows(BatchStatusSent, BatchStatusSent))
	assert.False(t, BatchTransitions.Allows(BatchStatusReceived, BatchStatusSent))
	assert.False(t, BatchTransitions.Allows(BatchStatusReceived, BatchStatusReceived))
}

func TestCardEvent_TargetStatus(t *testing.T) {
	for i, event := range []CardEvent{CardEventIssued, CardEventDelivered, CardEventHanded, CardEventActivated, CardEventClosed} {
		code, ok := event.TargetStatus()
		require.True(t, ok)
		assert.Equal(t, cardChain[i+1], code)
	}

	_, ok := CardEvent("lost").TargetStatus()
	assert.False(t, ok)
}

func TestTransitionsFor(t *testing.T) {
	table, err := TransitionsFor(EntityCard)
	require.NoError(t, err)
	assert.True(t, table.Allows(CardStatusCreated, CardStatusIssued))

	_, err = TransitionsFor(EntityType("client"))
	assert.Error(t, err)
	assert.False(t, EntityType("client").IsValid())
}

func TestDecision_IsValid(t *testing.T) {
	assert.True(t, DecisionApprove.IsValid())
	assert.True(t, DecisionReject.IsValid())
	assert.False(t, Decision("maybe").IsValid())
	assert.False(t, Decision("").IsValid())
}
