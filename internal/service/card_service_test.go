package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

var allCardEvents = []models.CardEvent{
	models.CardEventIssued,
	models.CardEventDelivered,
	models.CardEventHanded,
	models.CardEventActivated,
	models.CardEventClosed,
}

func TestApplyEvent_OnlyNextStatusAccepted(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.approvedApplication(t)

	card, err := setup.Cards.EnsureForApplication(ctx, app.ID, "operator")
	require.NoError(t, err)

	chain := []string{
		models.CardStatusCreated,
		models.CardStatusIssued,
		models.CardStatusDelivered,
		models.CardStatusHanded,
		models.CardStatusActivated,
		models.CardStatusClosed,
	}

	for i, current := range chain {
		require.Equal(t, current, card.StatusCode)

		var next models.CardEvent
		if i < len(allCardEvents) {
			next = allCardEvents[i]
		}
		for _, event := range allCardEvents {
			if event == next {
				continue
			}
			_, err := setup.Cards.ApplyEvent(ctx, card.ID, event, "operator")
			assert.Truef(t, serviceerror.IsInvalidState(err), "%s from %s should be rejected", event, current)
			se, _ := serviceerror.As(err)
			if se != nil {
				assert.Equal(t, current, se.CurrentStatus)
			}
		}

		if next == "" {
			break
		}
		card, err = setup.Cards.ApplyEvent(ctx, card.ID, next, "operator")
		require.NoError(t, err)
	}

	assert.NotNil(t, card.IssuedAt)
	assert.NotNil(t, card.DeliveredAt)
	assert.NotNil(t, card.HandedAt)
	assert.NotNil(t, card.ActivatedAt)
	assert.NotNil(t, card.ClosedAt)

	rows, err := setup.Cards.History(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, chain, historyCodes(rows))
}

func TestApplyEvent_DeliveredOnlyAcceptsHanded(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.approvedApplication(t)

	card, err := setup.Cards.EnsureForApplication(ctx, app.ID, "operator")
	require.NoError(t, err)
	for _, event := range []models.CardEvent{models.CardEventIssued, models.CardEventDelivered} {
		card, err = setup.Cards.ApplyEvent(ctx, card.ID, event, "operator")
		require.NoError(t, err)
	}

	_, err = setup.Cards.ApplyEvent(ctx, card.ID, models.CardEventActivated, "operator")
	assert.True(t, serviceerror.IsInvalidState(err))

	card, err = setup.Cards.ApplyEvent(ctx, card.ID, models.CardEventHanded, "operator")
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusHanded, card.StatusCode)
}

func TestApplyEvent_UnknownEvent(t *testing.T) {
	setup := NewTestSetup(t)

	_, err := setup.Cards.ApplyEvent(context.Background(), "any", "lost", "operator")
	assert.True(t, serviceerror.IsValidation(err))
}

func TestApplyEvent_CardNotFound(t *testing.T) {
	setup := NewTestSetup(t)

	_, err := setup.Cards.ApplyEvent(context.Background(), "missing", models.CardEventIssued, "operator")
	assert.True(t, serviceerror.IsNotFound(err))
}

func TestApplyEvent_IssueAssignsPlaceholderPAN(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.approvedApplication(t)

	card, err := setup.Cards.EnsureForApplication(ctx, app.ID, "operator")
	require.NoError(t, err)
	assert.Nil(t, card.PANMasked)

	card, err = setup.Cards.ApplyEvent(ctx, card.ID, models.CardEventIssued, "operator")
	require.NoError(t, err)

	require.NotNil(t, card.PANMasked)
	assert.Regexp(t, regexp.MustCompile(`^\*{4} \*{4} \*{4} \d{4}$`), *card.PANMasked)
	require.NotNil(t, card.ExpiryMonth)
	assert.Equal(t, 12, *card.ExpiryMonth)
	require.NotNil(t, card.ExpiryYear)
	assert.Equal(t, 2025+DefaultCardExpiryYears, *card.ExpiryYear)

	pan := *card.PANMasked
	card, err = setup.Cards.ApplyEvent(ctx, card.ID, models.CardEventDelivered, "operator")
	require.NoError(t, err)
	assert.Equal(t, pan, *card.PANMasked)
}

func TestEnsureForApplication_Idempotent(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.approvedApplication(t)

	first, err := setup.Cards.EnsureForApplication(ctx, app.ID, "operator")
	require.NoError(t, err)
	second, err := setup.Cards.EnsureForApplication(ctx, app.ID, "operator")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "CARD-2025-000001", second.CardNo)
	assert.Equal(t, models.CardStatusCreated, second.StatusCode)

	cards, total, err := setup.Cards.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, cards, 1)

	rows, err := setup.Cards.History(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestEnsureForApplication_RequiresApprovedApplication(t *testing.T) {
	setup := NewTestSetup(t)

	tests := []struct {
		name    string
		prepare func(t *testing.T) *models.Application
		allowed bool
	}{
		{"new", setup.newApplication, false},
		{"in review", setup.inReviewApplication, false},
		{"rejected", setup.rejectedApplication, false},
		{"approved", setup.approvedApplication, true},
		{"in batch", setup.inBatchApplication, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tt.prepare(t)
			card, err := setup.Cards.EnsureForApplication(context.Background(), app.ID, "operator")
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, app.ID, card.ApplicationID)
				return
			}
			assert.True(t, serviceerror.IsInvalidState(err))
		})
	}
}

func TestEnsureForApplication_UnknownApplication(t *testing.T) {
	setup := NewTestSetup(t)

	_, err := setup.Cards.EnsureForApplication(context.Background(), "missing", "operator")
	assert.True(t, serviceerror.IsNotFound(err))
}

func TestIssueCards_Idempotent(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.inBatchApplication(t)

	batches, _, err := setup.Batches.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	result, err := setup.Cards.IssueCards(ctx, batches[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.IssueCardsResult{Applications: 1, CardsTotal: 1, CardsIssuedNow: 1}, *result)

	result, err = setup.Cards.IssueCards(ctx, batches[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.IssueCardsResult{Applications: 1, CardsTotal: 1, CardsIssuedNow: 0}, *result)

	card, err := setup.Cards.GetByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusIssued, card.StatusCode)

	rows, err := setup.Cards.History(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, DefaultActor, *rows[1].ChangedBy)
}

func TestIssueCards_UnknownBatch(t *testing.T) {
	setup := NewTestSetup(t)

	_, err := setup.Cards.IssueCards(context.Background(), "missing", "")
	assert.True(t, serviceerror.IsNotFound(err))
}
