package models

import "time"

// Client kyc statuses
const (
	KYCStatusNew      = "new"
	KYCStatusVerified = "verified"
	KYCStatusFailed   = "failed"
)

// ClientFields holds the editable client profile. Updates overwrite all of it.
type ClientFields struct {
	ClientType   string     `db:"client_type" json:"clientType" binding:"omitempty,oneof=person company"`
	FullName     string     `db:"full_name" json:"fullName" binding:"required,max=250"`
	ShortName    *string    `db:"short_name" json:"shortName,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty" binding:"omitempty,email"`
	BirthDate    *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	Citizenship  *string    `db:"citizenship" json:"citizenship,omitempty"`
	DocType      *string    `db:"doc_type" json:"docType,omitempty"`
	DocNumber    *string    `db:"doc_number" json:"docNumber,omitempty"`
	DocIssueDate *time.Time `db:"doc_issue_date" json:"docIssueDate,omitempty"`
	DocIssuer    *string    `db:"doc_issuer" json:"docIssuer,omitempty"`
	RegAddress   *string    `db:"reg_address" json:"regAddress,omitempty"`
	FactAddress  *string    `db:"fact_address" json:"factAddress,omitempty"`
	Segment      *string    `db:"segment" json:"segment,omitempty"`
	KYCStatus    string     `db:"kyc_status" json:"kycStatus" binding:"omitempty,oneof=new verified failed"`
	RiskLevel    *string    `db:"risk_level" json:"riskLevel,omitempty"`
	Note         *string    `db:"note" json:"note,omitempty"`
}

// Client represents the CLIENT table
type Client struct {
	ID string `db:"id" json:"id"`
	ClientFields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ClientFilter narrows client listings
type ClientFilter struct {
	Query  string
	Limit  int
	Offset int
}
