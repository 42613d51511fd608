package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/pkg/utils"
)

// DefaultCardExpiryYears is how far ahead expiry is set when a card is issued
const DefaultCardExpiryYears = 3

// CardService owns the card state machine and the issuance cascade
type CardService struct {
	lifecycle
	expiryYears int
}

// NewCardService creates a new CardService. expiryYears <= 0 selects DefaultCardExpiryYears.
func NewCardService(deps Deps, expiryYears int) *CardService {
	if expiryYears <= 0 {
		expiryYears = DefaultCardExpiryYears
	}
	return &CardService{lifecycle: newLifecycle(deps), expiryYears: expiryYears}
}

// EnsureForApplication returns the card of an application, creating it in status CREATED
// when there is none. Only APPROVED and IN_BATCH applications may get a new card.
func (s *CardService) EnsureForApplication(ctx context.Context, applicationID, actor string) (*models.Card, error) {
	actor = s.actor(actor)

	var card *models.Card
	err := s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		card, err = s.ensure(ctx, applicationID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) ensure(ctx context.Context, applicationID, actor string) (*models.Card, error) {
	// the application row lock serialises concurrent ensure calls for one application
	app, err := s.stores.Applications.GetForUpdate(ctx, applicationID)
	if err != nil {
		return nil, lookupErr("application", applicationID, err)
	}

	existing, err := s.stores.Cards.GetByApplicationID(ctx, applicationID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, dao.ErrNotFound):
		return nil, storageErr("load card", err)
	}

	if !models.CardOwningApplicationStatuses[app.StatusCode] {
		return nil, serviceerror.InvalidState(app.StatusCode, "card can be created only for %s or %s applications",
			models.AppStatusApproved, models.AppStatusInBatch)
	}

	number, err := s.numbering.nextCard(ctx)
	if err != nil {
		return nil, err
	}
	status, err := s.status(ctx, models.EntityCard, models.CardStatusCreated)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	card := &models.Card{
		ID:            utils.GenerateID(),
		CardNo:        number,
		ApplicationID: applicationID,
		StatusID:      status.ID,
		StatusCode:    status.Code,
		CreatedAt:     now,
	}
	if err := s.stores.Cards.Create(ctx, card); err != nil {
		return nil, storageErr("create card", err)
	}
	if err := s.record(ctx, models.EntityCard, card.ID, status, actor, now); err != nil {
		return nil, err
	}
	return card, nil
}

// ApplyEvent moves a card to the status named by event. Only the single successor of the
// current status is accepted.
func (s *CardService) ApplyEvent(ctx context.Context, cardID string, event models.CardEvent, actor string) (card *models.Card, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("card.apply_event", start, err) }()

	target, ok := event.TargetStatus()
	if !ok {
		return nil, serviceerror.Validation("unknown card event: %s", event)
	}

	actor = s.actor(actor)
	err = s.uow.run(ctx, func(ctx context.Context) error {
		var err error
		card, err = s.stores.Cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return lookupErr("card", cardID, err)
		}
		return s.advance(ctx, card, target, actor)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) advance(ctx context.Context, card *models.Card, target, actor string) error {
	status, err := s.moveTo(ctx, models.EntityCard, card.StatusCode, target)
	if err != nil {
		return err
	}

	now := s.clock()
	card.StampTransition(target, now)
	if target == models.CardStatusIssued {
		s.assignDemoPAN(card, now)
	}
	card.StatusID = status.ID
	card.StatusCode = status.Code

	if err := s.stores.Cards.Update(ctx, card); err != nil {
		return storageErr("update card", err)
	}
	return s.record(ctx, models.EntityCard, card.ID, status, actor, now)
}

// assignDemoPAN sets a placeholder masked number and expiry once. They never change afterwards.
func (s *CardService) assignDemoPAN(card *models.Card, now time.Time) {
	if card.PANMasked == nil {
		pan := fmt.Sprintf("**** **** **** %04d", 1000+rand.IntN(9000))
		card.PANMasked = &pan
	}
	if card.ExpiryMonth == nil {
		month := 12
		card.ExpiryMonth = &month
	}
	if card.ExpiryYear == nil {
		year := now.Year() + s.expiryYears
		card.ExpiryYear = &year
	}
}

// IssueCards ensures a card for every application of a batch and issues the ones still CREATED.
// Running it again issues nothing new.
func (s *CardService) IssueCards(ctx context.Context, batchID, actor string) (*models.IssueCardsResult, error) {
	actor = s.actor(actor)

	var result *models.IssueCardsResult
	err := s.uow.run(ctx, func(ctx context.Context) error {
		if _, err := s.stores.Batches.GetByID(ctx, batchID); err != nil {
			return lookupErr("batch", batchID, err)
		}
		var err error
		result, err = s.issueCards(ctx, batchID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CardService) issueCards(ctx context.Context, batchID, actor string) (*models.IssueCardsResult, error) {
	items, err := s.stores.Batches.ListItems(ctx, batchID)
	if err != nil {
		return nil, storageErr("list batch items", err)
	}

	result := &models.IssueCardsResult{Applications: len(items)}
	for _, item := range items {
		card, err := s.ensure(ctx, item.ApplicationID, actor)
		if err != nil {
			return nil, err
		}
		result.CardsTotal++

		if card.StatusCode != models.CardStatusCreated {
			continue
		}
		if err := s.advance(ctx, card, models.CardStatusIssued, actor); err != nil {
			return nil, err
		}
		result.CardsIssuedNow++
	}

	s.metrics.AddCardsIssued(result.CardsIssuedNow)
	s.logger.WithFields(map[string]interface{}{
		"batch_id":     batchID,
		"applications": result.Applications,
		"issued_now":   result.CardsIssuedNow,
	}).Info("Batch cards issued")
	return result, nil
}

// Get returns one card
func (s *CardService) Get(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.stores.Cards.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("card", id, err)
	}
	return card, nil
}

// GetByApplication returns the card issued against an application
func (s *CardService) GetByApplication(ctx context.Context, applicationID string) (*models.Card, error) {
	card, err := s.stores.Cards.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, lookupErr("card for application", applicationID, err)
	}
	return card, nil
}

// List returns a page of cards, most recently issued first
func (s *CardService) List(ctx context.Context, limit, offset int) ([]models.Card, int, error) {
	cards, total, err := s.stores.Cards.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, storageErr("list cards", err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, total, nil
}

// History returns the ledger of a card in chronological order
func (s *CardService) History(ctx context.Context, id string) ([]models.StatusHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return historyOf(ctx, s.stores.History, models.EntityCard, id)
}
