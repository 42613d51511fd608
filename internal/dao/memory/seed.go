package memory

import (
	"github.com/shopspring/decimal"

	"github.com/cardops/card-issuance-api/internal/models"
)

// DefaultReferenceData returns the catalog every fresh deployment starts with
func DefaultReferenceData() *models.ReferenceData {
	var id int64
	status := func(entity models.EntityType, code, name string, order int) models.Status {
		id++
		return models.Status{ID: id, EntityType: entity, Code: code, Name: name, SortOrder: order}
	}

	return &models.ReferenceData{
		Statuses: []models.Status{
			status(models.EntityApplication, models.AppStatusNew, "New", 1),
			status(models.EntityApplication, models.AppStatusInReview, "In review", 2),
			status(models.EntityApplication, models.AppStatusApproved, "Approved", 3),
			status(models.EntityApplication, models.AppStatusRejected, "Rejected", 4),
			status(models.EntityApplication, models.AppStatusInBatch, "In batch", 5),
			status(models.EntityBatch, models.BatchStatusCreated, "Created", 1),
			status(models.EntityBatch, models.BatchStatusSent, "Sent to vendor", 2),
			status(models.EntityBatch, models.BatchStatusReceived, "Received", 3),
			status(models.EntityCard, models.CardStatusCreated, "Created", 1),
			status(models.EntityCard, models.CardStatusIssued, "Issued", 2),
			status(models.EntityCard, models.CardStatusDelivered, "Delivered", 3),
			status(models.EntityCard, models.CardStatusHanded, "Handed to client", 4),
			status(models.EntityCard, models.CardStatusActivated, "Activated", 5),
			status(models.EntityCard, models.CardStatusClosed, "Closed", 6),
		},
		Branches: []models.Branch{
			{ID: 1, Code: "HQ", Name: "Head office", City: "Almaty", Address: "Abai ave 10", IsActive: true},
			{ID: 2, Code: "AST-01", Name: "Astana central", City: "Astana", Address: "Kabanbay batyr 5", IsActive: true},
		},
		Channels: []models.Channel{
			{ID: 1, Code: "branch", Name: "Branch", IsActive: true},
			{ID: 2, Code: "mobile", Name: "Mobile app", IsActive: true},
			{ID: 3, Code: "web", Name: "Internet banking", IsActive: true},
		},
		DeliveryMethods: []models.DeliveryMethod{
			{ID: 1, Code: "pickup", Name: "Branch pickup", BaseCost: decimal.Zero, SLADays: 5, IsActive: true},
			{ID: 2, Code: "courier", Name: "Courier", BaseCost: decimal.RequireFromString("1500.00"), SLADays: 3, IsActive: true},
		},
		Vendors: []models.Vendor{
			{ID: 1, VendorType: "plastic", Name: "CardPlast", SLADays: 7, IsActive: true},
			{ID: 2, VendorType: "courier", Name: "FastPost", SLADays: 2, IsActive: true},
		},
		RejectReasons: []models.RejectReason{
			{ID: 1, Code: "kyc_failed", Name: "KYC check failed", IsActive: true},
			{ID: 2, Code: "docs_invalid", Name: "Invalid documents", IsActive: true},
			{ID: 3, Code: "client_cancel", Name: "Cancelled by client", IsActive: true},
		},
		Products: []models.CardProduct{
			{ID: 1, Code: "VISA_CLASSIC_KZT", Name: "Visa Classic", PaymentSystem: "VISA", Level: "classic", Currency: "KZT", TermMonths: 36, IsActive: true},
			{ID: 2, Code: "MC_GOLD_USD", Name: "Mastercard Gold", PaymentSystem: "MC", Level: "gold", Currency: "USD", TermMonths: 36, IsActive: true},
			{ID: 3, Code: "VISA_VIRTUAL_KZT", Name: "Visa Virtual", PaymentSystem: "VISA", Level: "classic", Currency: "KZT", TermMonths: 36, IsVirtual: true, IsActive: true},
		},
		Tariffs: []models.TariffPlan{
			{ID: 1, Code: "BASE", Name: "Base", IssueFee: decimal.RequireFromString("2000.00"), MonthlyFee: decimal.RequireFromString("300.00"), DeliverySubsidy: decimal.Zero, IsActive: true},
			{ID: 2, Code: "SALARY", Name: "Salary project", IssueFee: decimal.Zero, MonthlyFee: decimal.Zero, DeliverySubsidy: decimal.RequireFromString("1500.00"), IsActive: true},
		},
	}
}
