package models

import "github.com/shopspring/decimal"

// Status represents a row of the REF_STATUS catalog
type Status struct {
	ID         int64      `db:"id" json:"id"`
	EntityType EntityType `db:"entity_type" json:"entityType"`
	Code       string     `db:"code" json:"code"`
	Name       string     `db:"name" json:"name"`
	SortOrder  int        `db:"sort_order" json:"sortOrder"`
}

// Branch is a bank office where cards can be picked up
type Branch struct {
	ID       int64   `db:"id" json:"id"`
	Code     string  `db:"code" json:"code"`
	Name     string  `db:"name" json:"name"`
	City     string  `db:"city" json:"city"`
	Address  string  `db:"address" json:"address"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
	IsActive bool    `db:"is_active" json:"isActive"`
}

// Channel is the sales channel an application arrived through
type Channel struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// DeliveryMethod describes how a produced card reaches the client
type DeliveryMethod struct {
	ID       int64           `db:"id" json:"id"`
	Code     string          `db:"code" json:"code"`
	Name     string          `db:"name" json:"name"`
	BaseCost decimal.Decimal `db:"base_cost" json:"baseCost"`
	SLADays  int             `db:"sla_days" json:"slaDays"`
	IsActive bool            `db:"is_active" json:"isActive"`
}

// Vendor is a card manufacturer or courier
type Vendor struct {
	ID         int64   `db:"id" json:"id"`
	VendorType string  `db:"vendor_type" json:"vendorType"`
	Name       string  `db:"name" json:"name"`
	Contacts   *string `db:"contacts" json:"contacts,omitempty"`
	SLADays    int     `db:"sla_days" json:"slaDays"`
	IsActive   bool    `db:"is_active" json:"isActive"`
}

// RejectReason explains a negative decision
type RejectReason struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// CardProduct combines payment system, level, currency and term
type CardProduct struct {
	ID            int64  `db:"id" json:"id"`
	Code          string `db:"code" json:"code"`
	Name          string `db:"name" json:"name"`
	PaymentSystem string `db:"payment_system" json:"paymentSystem"`
	Level         string `db:"level" json:"level"`
	Currency      string `db:"currency" json:"currency"`
	TermMonths    int    `db:"term_months" json:"termMonths"`
	IsVirtual     bool   `db:"is_virtual" json:"isVirtual"`
	Metadata      JSON   `db:"metadata_json" json:"metadata,omitempty"`
	IsActive      bool   `db:"is_active" json:"isActive"`
}

// TariffPlan holds the fee schedule attached to an application
type TariffPlan struct {
	ID                int64           `db:"id" json:"id"`
	Code              string          `db:"code" json:"code"`
	Name              string          `db:"name" json:"name"`
	IssueFee          decimal.Decimal `db:"issue_fee" json:"issueFee"`
	MonthlyFee        decimal.Decimal `db:"monthly_fee" json:"monthlyFee"`
	DeliverySubsidy   decimal.Decimal `db:"delivery_subsidy" json:"deliverySubsidy"`
	FreeConditionText *string         `db:"free_condition_text" json:"freeConditionText,omitempty"`
	Limits            JSON            `db:"limits_json" json:"limits,omitempty"`
	IsActive          bool            `db:"is_active" json:"isActive"`
}

// ReferenceKind names a lookup table that lifecycle entities point into
type ReferenceKind string

const (
	RefBranch         ReferenceKind = "branch"
	RefChannel        ReferenceKind = "channel"
	RefDeliveryMethod ReferenceKind = "delivery_method"
	RefVendor         ReferenceKind = "vendor"
	RefRejectReason   ReferenceKind = "reject_reason"
	RefCardProduct    ReferenceKind = "card_product"
	RefTariffPlan     ReferenceKind = "tariff_plan"
)

// ReferenceData is the full set of active catalogs returned to UIs
type ReferenceData struct {
	Statuses        []Status         `json:"statuses"`
	Branches        []Branch         `json:"branches"`
	Channels        []Channel        `json:"channels"`
	DeliveryMethods []DeliveryMethod `json:"deliveryMethods"`
	Vendors         []Vendor         `json:"vendors"`
	RejectReasons   []RejectReason   `json:"rejectReasons"`
	Products        []CardProduct    `json:"products"`
	Tariffs         []TariffPlan     `json:"tariffs"`
}
