package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

func TestCreateClient_NormalizesPassport(t *testing.T) {
	setup := NewTestSetup(t)

	client, err := setup.Clients.Create(context.Background(), models.ClientFields{
		FullName:  "  Anna Smirnova ",
		DocType:   strPtr("passport"),
		DocNumber: strPtr("4510-123456"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna Smirnova", client.FullName)
	assert.Equal(t, "4510 123456", *client.DocNumber)
	assert.Equal(t, "person", client.ClientType)
	assert.Equal(t, models.KYCStatusNew, client.KYCStatus)
}

func TestCreateClient_Validation(t *testing.T) {
	setup := NewTestSetup(t)

	tests := []struct {
		name   string
		fields models.ClientFields
	}{
		{"missing name", models.ClientFields{FullName: "  "}},
		{"short passport", models.ClientFields{FullName: "A", DocNumber: strPtr("12345")}},
		{"bad email", models.ClientFields{FullName: "A", Email: strPtr("nope")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := setup.Clients.Create(context.Background(), tt.fields)
			assert.True(t, serviceerror.IsValidation(err))
		})
	}
}

func TestUpdateClient_OverwritesProfile(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	client, err := setup.Clients.Create(ctx, models.ClientFields{FullName: "Ivan Petrov", Phone: strPtr("+70000000000")})
	require.NoError(t, err)

	updated, err := setup.Clients.Update(ctx, client.ID, models.ClientFields{FullName: "Ivan Petrov-Vodkin"})
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov-Vodkin", updated.FullName)
	assert.Nil(t, updated.Phone)

	_, err = setup.Clients.Update(ctx, "missing", models.ClientFields{FullName: "X"})
	assert.True(t, serviceerror.IsNotFound(err))
}

func TestListClients_Search(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	_, err := setup.Clients.Create(ctx, models.ClientFields{FullName: "Ivan Petrov", DocNumber: strPtr("4510123456")})
	require.NoError(t, err)
	_, err = setup.Clients.Create(ctx, models.ClientFields{FullName: "Olga Ivanova"})
	require.NoError(t, err)

	clients, total, err := setup.Clients.List(ctx, models.ClientFilter{Query: "4510 12", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, clients, 1)
	assert.Equal(t, "Ivan Petrov", clients[0].FullName)

	_, total, err = setup.Clients.List(ctx, models.ClientFilter{Query: "ivan", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
