package models

import "fmt"

// EntityType identifies one of the independent status spaces
type EntityType string

const (
	EntityApplication EntityType = "application"
	EntityBatch       EntityType = "batch"
	EntityCard        EntityType = "card"
)

// IsValid reports whether the entity type has a status space
func (e EntityType) IsValid() bool {
	switch e {
	case EntityApplication, EntityBatch, EntityCard:
		return true
	}
	return false
}

// Application status codes
const (
	AppStatusNew      = "NEW"
	AppStatusInReview = "IN_REVIEW"
	AppStatusApproved = "APPROVED"
	AppStatusRejected = "REJECTED"
	AppStatusInBatch  = "IN_BATCH"
)

// Batch status codes
const (
	BatchStatusCreated  = "CREATED"
	BatchStatusSent     = "SENT"
	BatchStatusReceived = "RECEIVED"
)

// Card status codes
const (
	CardStatusCreated   = "CREATED"
	CardStatusIssued    = "ISSUED"
	CardStatusDelivered = "DELIVERED"
	CardStatusHanded    = "HANDED"
	CardStatusActivated = "ACTIVATED"
	CardStatusClosed    = "CLOSED"
)

// TransitionTable maps a status code to the codes reachable from it in one step.
// Codes absent from the map, or mapped to an empty set, are terminal.
type TransitionTable map[string][]string

// Allows reports whether to is a legal successor of from
func (t TransitionTable) Allows(from, to string) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Successors returns the codes reachable from the given code
func (t TransitionTable) Successors(from string) []string {
	return t[from]
}

var (
	ApplicationTransitions = TransitionTable{
		AppStatusNew:      {AppStatusInReview, AppStatusApproved, AppStatusRejected},
		AppStatusInReview: {AppStatusApproved, AppStatusRejected},
		AppStatusApproved: {AppStatusInBatch},
		AppStatusRejected: {},
		AppStatusInBatch:  {},
	}

	BatchTransitions = TransitionTable{
		BatchStatusCreated:  {BatchStatusSent, BatchStatusReceived},
		BatchStatusSent:     {BatchStatusReceived},
		BatchStatusReceived: {},
	}

	// Cards move strictly forward through a single chain.
	CardTransitions = TransitionTable{
		CardStatusCreated:   {CardStatusIssued},
		CardStatusIssued:    {CardStatusDelivered},
		CardStatusDelivered: {CardStatusHanded},
		CardStatusHanded:    {CardStatusActivated},
		CardStatusActivated: {CardStatusClosed},
		CardStatusClosed:    {},
	}
)

// TransitionsFor returns the transition table of an entity type
func TransitionsFor(entity EntityType) (TransitionTable, error) {
	switch entity {
	case EntityApplication:
		return ApplicationTransitions, nil
	case EntityBatch:
		return BatchTransitions, nil
	case EntityCard:
		return CardTransitions, nil
	}
	return nil, fmt.Errorf("unknown entity type: %s", entity)
}

// EditableApplicationStatuses are the statuses in which application fields may be overwritten
var EditableApplicationStatuses = map[string]bool{
	AppStatusNew:      true,
	AppStatusInReview: true,
}

// CardOwningApplicationStatuses are the statuses in which an application may get a card
var CardOwningApplicationStatuses = map[string]bool{
	AppStatusApproved: true,
	AppStatusInBatch:  true,
}

// CardEvent is an externally reported card lifecycle event
type CardEvent string

const (
	CardEventIssued    CardEvent = "issued"
	CardEventDelivered CardEvent = "delivered"
	CardEventHanded    CardEvent = "handed"
	CardEventActivated CardEvent = "activated"
	CardEventClosed    CardEvent = "closed"
)

var cardEventTargets = map[CardEvent]string{
	CardEventIssued:    CardStatusIssued,
	CardEventDelivered: CardStatusDelivered,
	CardEventHanded:    CardStatusHanded,
	CardEventActivated: CardStatusActivated,
	CardEventClosed:    CardStatusClosed,
}

// TargetStatus returns the card status an event moves to
func (e CardEvent) TargetStatus() (string, bool) {
	code, ok := cardEventTargets[e]
	return code, ok
}

// Decision is a reviewer verdict on an application
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// IsValid reports whether the decision is known
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}
