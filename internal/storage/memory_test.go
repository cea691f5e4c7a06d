// internal/storage/memory_test.go
package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededDirectory_Lookups(t *testing.T) {
	dir := NewSeededDirectory()
	ctx := context.Background()

	customer, err := dir.GetCustomer(ctx, "CUST001")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Anita Verma", customer.Name)
	assert.Equal(t, 720, customer.CreditScore)
	assert.Equal(t, float64(150000), customer.PreApprovedLimit)

	crm, err := dir.GetCrmRecord(ctx, "CUST001")
	require.NoError(t, err)
	require.NotNil(t, crm)
	assert.Equal(t, "110016", crm.Pincode)
}

func TestSeededDirectory_AbsenceIsNotAnError(t *testing.T) {
	dir := NewSeededDirectory()
	ctx := context.Background()

	customer, err := dir.GetCustomer(ctx, "CUST999")
	require.NoError(t, err)
	assert.Nil(t, customer)

	crm, err := dir.GetCrmRecord(ctx, "CUST999")
	require.NoError(t, err)
	assert.Nil(t, crm)

	offers, err := dir.GetOffersByCustomer(ctx, "CUST999")
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestSeededDirectory_Offers(t *testing.T) {
	dir := NewSeededDirectory()
	ctx := context.Background()

	all, err := dir.GetOffers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	mine, err := dir.GetOffersByCustomer(ctx, "CUST003")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "OFF003", mine[0].OfferID)
	assert.Equal(t, float64(500000), mine[0].MaxAmount)
}

func TestSeededDirectory_SanctionLetters(t *testing.T) {
	dir := NewSeededDirectory()
	ctx := context.Background()

	missing, err := dir.GetSanctionLetter(ctx, "UW0")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, dir.SaveSanctionLetter(ctx, "CUST001", "UW1700000000"))

	rec, err := dir.GetSanctionLetter(ctx, "UW1700000000")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "CUST001", rec.CustomerID)
	assert.False(t, rec.GeneratedAt.IsZero())
}
