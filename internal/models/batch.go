package models

import "time"

// Batch represents the ISSUE_BATCH table
type Batch struct {
	ID            string           `db:"id" json:"id"`
	BatchNo       string           `db:"batch_no" json:"batchNo"`
	VendorID      int64            `db:"vendor_id" json:"vendorId"`
	StatusID      int64            `db:"status_id" json:"statusId"`
	StatusCode    string           `db:"status_code" json:"statusCode"`
	PlannedSendAt *time.Time       `db:"planned_send_at" json:"plannedSendAt,omitempty"`
	SentAt        *time.Time       `db:"sent_at" json:"sentAt,omitempty"`
	ReceivedAt    *time.Time       `db:"received_at" json:"receivedAt,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
	Items         []IssueBatchItem `db:"-" json:"items,omitempty"`
}

// IssueBatchItem links one application to the batch producing its card
type IssueBatchItem struct {
	ID                  string     `db:"id" json:"id"`
	BatchID             string     `db:"batch_id" json:"batchId"`
	ApplicationID       string     `db:"application_id" json:"applicationId"`
	Position            int        `db:"position" json:"position"`
	ProducedAt          *time.Time `db:"produced_at" json:"producedAt,omitempty"`
	DeliveredToBranchAt *time.Time `db:"delivered_to_branch_at" json:"deliveredToBranchAt,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}

// BatchCreateInput holds the fields needed to open a batch
type BatchCreateInput struct {
	VendorID      int64      `json:"vendorId" binding:"required"`
	PlannedSendAt *time.Time `json:"plannedSendAt,omitempty"`
}

// BatchUpdateInput overwrites batch administrative fields.
// A nil VendorID keeps the vendor; PlannedSendAt is always written, nil clears it.
type BatchUpdateInput struct {
	VendorID      *int64     `json:"vendorId,omitempty"`
	PlannedSendAt *time.Time `json:"plannedSendAt"`
}

// IssueCardsResult summarises an issueCards run over a batch
type IssueCardsResult struct {
	Applications   int `json:"applications"`
	CardsTotal     int `json:"cardsTotal"`
	CardsIssuedNow int `json:"cardsIssuedNow"`
}
