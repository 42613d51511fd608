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

func TestRecordFee(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.newApplication(t)

	op, err := setup.Fees.Record(ctx, app.ID, models.FeeOperationInput{
		OpType: models.FeeOpIssue,
		Amount: decimal.RequireFromString("499.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultFeeCurrency, op.Currency)
	assert.True(t, decimal.RequireFromString("499.9").Equal(op.Amount))
	assert.False(t, op.OccurredAt.IsZero())

	_, err = setup.Fees.Record(ctx, app.ID, models.FeeOperationInput{
		OpType:   models.FeeOpDelivery,
		Amount:   decimal.NewFromInt(250),
		Currency: "usd",
	})
	require.NoError(t, err)

	ops, err := setup.Fees.List(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, models.FeeOpIssue, ops[0].OpType)
	assert.Equal(t, "USD", ops[1].Currency)
}

func TestRecordFee_Validation(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()
	app := setup.newApplication(t)

	_, err := setup.Fees.Record(ctx, app.ID, models.FeeOperationInput{OpType: "cashback", Amount: decimal.NewFromInt(1)})
	assert.True(t, serviceerror.IsValidation(err))

	_, err = setup.Fees.Record(ctx, app.ID, models.FeeOperationInput{OpType: models.FeeOpMonthly, Amount: decimal.NewFromInt(-1)})
	assert.True(t, serviceerror.IsValidation(err))

	_, err = setup.Fees.Record(ctx, "missing", models.FeeOperationInput{OpType: models.FeeOpMonthly, Amount: decimal.NewFromInt(1)})
	assert.True(t, serviceerror.IsNotFound(err))
}
