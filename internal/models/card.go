package models

import "time"

// Card represents the CARD table
type Card struct {
	ID                  string     `db:"id" json:"id"`
	CardNo              string     `db:"card_no" json:"cardNo"`
	ApplicationID       string     `db:"application_id" json:"applicationId"`
	StatusID            int64      `db:"status_id" json:"statusId"`
	StatusCode          string     `db:"status_code" json:"statusCode"`
	PANMasked           *string    `db:"pan_masked" json:"panMasked,omitempty"`
	ExpiryMonth         *int       `db:"expiry_month" json:"expiryMonth,omitempty"`
	ExpiryYear          *int       `db:"expiry_year" json:"expiryYear,omitempty"`
	IssuedAt            *time.Time `db:"issued_at" json:"issuedAt,omitempty"`
	DeliveredAt         *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
	HandedAt            *time.Time `db:"handed_at" json:"handedAt,omitempty"`
	ActivatedAt         *time.Time `db:"activated_at" json:"activatedAt,omitempty"`
	ClosedAt            *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	ActivationChannelID *int64     `db:"activation_channel_id" json:"activationChannelId,omitempty"`
	Note                *string    `db:"note" json:"note,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}

// StampTransition records the time a card reached the given status
func (c *Card) StampTransition(code string, at time.Time) {
	switch code {
	case CardStatusIssued:
		c.IssuedAt = &at
	case CardStatusDelivered:
		c.DeliveredAt = &at
	case CardStatusHanded:
		c.HandedAt = &at
	case CardStatusActivated:
		c.ActivatedAt = &at
	case CardStatusClosed:
		c.ClosedAt = &at
	}
}

// CardEventInput is the body of a card event request
type CardEventInput struct {
	Event CardEvent `json:"event" binding:"required"`
}
