package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

func TestListStatuses(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	statuses, err := setup.References.ListStatuses(ctx, models.EntityBatch)
	require.NoError(t, err)
	codes := make([]string, 0, len(statuses))
	for _, s := range statuses {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{models.BatchStatusCreated, models.BatchStatusSent, models.BatchStatusReceived}, codes)

	all, err := setup.References.ListStatuses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 14)

	_, err = setup.References.ListStatuses(ctx, "invoice")
	assert.True(t, serviceerror.IsValidation(err))
}

func TestUpdateStatusDisplay(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	status, err := setup.References.UpdateStatusDisplay(ctx, 2, "Under review", 15)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusInReview, status.Code)
	assert.Equal(t, "Under review", status.Name)
	assert.Equal(t, 15, status.SortOrder)

	_, err = setup.References.UpdateStatusDisplay(ctx, 2, " ", 1)
	assert.True(t, serviceerror.IsValidation(err))

	_, err = setup.References.UpdateStatusDisplay(ctx, 999, "Ghost", 1)
	assert.True(t, serviceerror.IsNotFound(err))
}

func TestLoadAllReferences(t *testing.T) {
	setup := NewTestSetup(t)

	data, err := setup.References.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data.Statuses)
	assert.Len(t, data.Vendors, 2)
	assert.Len(t, data.RejectReasons, 3)
}

func TestCreateCatalogEntry_UsableAsReference(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	entry, err := models.NewCatalogEntry(models.RefBranch)
	require.NoError(t, err)
	branch := entry.(*models.Branch)
	branch.Code = "  SHY-02 "
	branch.Name = "Shymkent south"
	branch.City = "Shymkent"

	created, err := setup.References.CreateCatalogEntry(ctx, branch)
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.EntryID())
	assert.Equal(t, "SHY-02", created.EntryCode())
	assert.True(t, created.Active())

	fields := validFields(setup.newClient(t).ID)
	fields.BranchID = created.EntryID()
	app, err := setup.Applications.Create(ctx, fields, "operator")
	require.NoError(t, err)
	assert.Equal(t, created.EntryID(), app.BranchID)
}

func TestCreateCatalogEntry_Validation(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry models.CatalogEntry
	}{
		{"empty code", &models.Channel{Name: "Call center"}},
		{"blank name", &models.RejectReason{Code: "other", Name: "   "}},
		{"vendor without type", &models.Vendor{Name: "Plastics Inc"}},
		{"bad currency", &models.CardProduct{Code: "X", Name: "X", PaymentSystem: "visa", Level: "gold", Currency: "DOLLAR", TermMonths: 36}},
		{"negative fee", &models.TariffPlan{Code: "NEG", Name: "Negative", IssueFee: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := setup.References.CreateCatalogEntry(ctx, tt.entry)
			assert.True(t, serviceerror.IsValidation(err))
		})
	}
}

func TestCreateCatalogEntry_DuplicateCode(t *testing.T) {
	setup := NewTestSetup(t)

	_, err := setup.References.CreateCatalogEntry(context.Background(), &models.RejectReason{Code: "kyc_failed", Name: "KYC again", IsActive: true})

	se, ok := serviceerror.As(err)
	require.True(t, ok)
	assert.Equal(t, serviceerror.CodeDuplicate, se.Code)
}

func TestUpdateCatalogEntry_Deactivate(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	updated, err := setup.References.UpdateCatalogEntry(ctx, 2, &models.Vendor{VendorType: "courier", Name: "FastPost Express", SLADays: 1})
	require.NoError(t, err)
	vendor := updated.(*models.Vendor)
	assert.Equal(t, int64(2), vendor.ID)
	assert.Equal(t, "FastPost Express", vendor.Name)
	assert.False(t, vendor.IsActive)

	active, err := setup.References.ListCatalog(ctx, models.RefVendor, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].EntryID())

	all, err := setup.References.ListCatalog(ctx, models.RefVendor, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	meta, err := setup.References.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, meta.Vendors, 1)
}

func TestUpdateCatalogEntry_Errors(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	_, err := setup.References.UpdateCatalogEntry(ctx, 99, &models.Channel{Code: "x", Name: "x"})
	assert.True(t, serviceerror.IsNotFound(err))

	_, err = setup.References.UpdateCatalogEntry(ctx, 1, &models.Channel{Code: "web", Name: "Branch"})
	se, ok := serviceerror.As(err)
	require.True(t, ok)
	assert.Equal(t, serviceerror.CodeDuplicate, se.Code)

	_, err = setup.References.ListCatalog(ctx, models.ReferenceKind("client"), false)
	assert.True(t, serviceerror.IsValidation(err))
}

func TestListCatalog_Ordering(t *testing.T) {
	setup := NewTestSetup(t)

	branches, err := setup.References.ListCatalog(context.Background(), models.RefBranch, false)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	// ordered by city, then name
	assert.Equal(t, "HQ", branches[0].EntryCode())
	assert.Equal(t, "AST-01", branches[1].EntryCode())
}
