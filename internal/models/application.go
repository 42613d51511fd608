package models

import "time"

// Application priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ApplicationFields is the caller-supplied part of an application.
// Create and update both take the complete set; there is no partial patch.
type ApplicationFields struct {
	ClientID              string     `db:"client_id" json:"clientId" binding:"required"`
	ProductID             int64      `db:"product_id" json:"productId" binding:"required"`
	TariffID              int64      `db:"tariff_id" json:"tariffId" binding:"required"`
	ChannelID             int64      `db:"channel_id" json:"channelId" binding:"required"`
	BranchID              int64      `db:"branch_id" json:"branchId" binding:"required"`
	DeliveryMethodID      int64      `db:"delivery_method_id" json:"deliveryMethodId" binding:"required"`
	DeliveryAddress       *string    `db:"delivery_address" json:"deliveryAddress,omitempty"`
	DeliveryComment       *string    `db:"delivery_comment" json:"deliveryComment,omitempty"`
	EmbossingName         *string    `db:"embossing_name" json:"embossingName,omitempty" binding:"omitempty,max=40"`
	IsSalaryProject       bool       `db:"is_salary_project" json:"isSalaryProject"`
	RequestedDeliveryDate *time.Time `db:"requested_delivery_date" json:"requestedDeliveryDate,omitempty"`
	Priority              string     `db:"priority" json:"priority" binding:"omitempty,oneof=low normal high"`
	LimitsRequested       JSON       `db:"limits_requested_json" json:"limitsRequested,omitempty"`
	ConsentPersonalData   bool       `db:"consent_personal_data" json:"consentPersonalData"`
	ConsentMarketing      bool       `db:"consent_marketing" json:"consentMarketing"`
	Comment               *string    `db:"comment" json:"comment,omitempty"`
}

// Application represents the CARD_APPLICATION table
type Application struct {
	ID            string `db:"id" json:"id"`
	ApplicationNo string `db:"application_no" json:"applicationNo"`
	ApplicationFields
	RequestedAt      time.Time  `db:"requested_at" json:"requestedAt"`
	PlannedIssueDate *time.Time `db:"planned_issue_date" json:"plannedIssueDate,omitempty"`
	StatusID         int64      `db:"status_id" json:"statusId"`
	StatusCode       string     `db:"status_code" json:"statusCode"`
	RejectReasonID   *int64     `db:"reject_reason_id" json:"rejectReasonId,omitempty"`
	KYCScore         *int       `db:"kyc_score" json:"kycScore,omitempty"`
	KYCResult        *string    `db:"kyc_result" json:"kycResult,omitempty"`
	KYCNotes         *string    `db:"kyc_notes" json:"kycNotes,omitempty"`
	DecisionAt       *time.Time `db:"decision_at" json:"decisionAt,omitempty"`
	DecisionBy       *string    `db:"decision_by" json:"decisionBy,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`

	// Filled on reads only
	Batch *BatchBrief `db:"-" json:"batch,omitempty"`
	Card  *CardBrief  `db:"-" json:"card,omitempty"`
}

// BatchBrief identifies the batch an application was placed in
type BatchBrief struct {
	ID         string `json:"id"`
	BatchNo    string `json:"batchNo"`
	StatusCode string `json:"statusCode"`
}

// CardBrief summarizes the card issued against an application
type CardBrief struct {
	ID         string  `json:"id"`
	CardNo     string  `json:"cardNo"`
	StatusCode string  `json:"statusCode"`
	PANMasked  *string `json:"panMasked,omitempty"`
}

// DecisionInput carries a reviewer verdict. KYC values are stored verbatim.
type DecisionInput struct {
	Decision         Decision   `json:"decision" binding:"required,oneof=approve reject"`
	RejectReasonID   *int64     `json:"rejectReasonId,omitempty"`
	PlannedIssueDate *time.Time `json:"plannedIssueDate,omitempty"`
	KYCScore         *int       `json:"kycScore,omitempty" binding:"omitempty,min=0,max=1000"`
	KYCResult        *string    `json:"kycResult,omitempty"`
	KYCNotes         *string    `json:"kycNotes,omitempty"`
	DecisionBy       *string    `json:"decisionBy,omitempty"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Query       string
	StatusCodes []string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
