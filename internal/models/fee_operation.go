package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee operation types
const (
	FeeOpIssue       = "issue_fee"
	FeeOpMonthly     = "monthly_fee"
	FeeOpDelivery    = "delivery_cost"
	FeeOpPlasticCost = "plastic_cost"
)

// ValidFeeOpTypes lists the accepted fee operation types
var ValidFeeOpTypes = map[string]bool{
	FeeOpIssue:       true,
	FeeOpMonthly:     true,
	FeeOpDelivery:    true,
	FeeOpPlasticCost: true,
}

// FeeOperation is a recorded monetary fact about an application
type FeeOperation struct {
	ID            string          `db:"id" json:"id"`
	ApplicationID string          `db:"application_id" json:"applicationId"`
	OpType        string          `db:"op_type" json:"opType"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Currency      string          `db:"currency" json:"currency"`
	OccurredAt    time.Time       `db:"occurred_at" json:"occurredAt"`
	Meta          JSON            `db:"meta_json" json:"meta,omitempty"`
}

// FeeOperationInput is the body of a fee recording request
type FeeOperationInput struct {
	OpType     string          `json:"opType" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" binding:"omitempty,len=3"`
	OccurredAt *time.Time      `json:"occurredAt,omitempty"`
	Meta       JSON            `json:"meta,omitempty"`
}
