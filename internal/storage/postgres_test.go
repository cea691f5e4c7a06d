// internal/storage/postgres_test.go
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDirectory_GetCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"customer_id", "name", "age", "city", "phone", "email",
		"existing_loan", "existing_loan_amount", "credit_score",
		"pre_approved_limit", "employment_type", "monthly_net_salary",
	}).AddRow(
		"CUST001", "Anita Verma", 29, "Delhi", "+91-9810000001", "anita.verma@example.com",
		"no", 0.0, 720, 150000.0, "Salaried", 65000.0,
	)
	mock.ExpectQuery(`SELECT (.+) FROM customers WHERE customer_id = \$1`).
		WithArgs("CUST001").
		WillReturnRows(rows)

	dir := NewPostgresDirectory(db)
	customer, err := dir.GetCustomer(context.Background(), "CUST001")

	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Anita Verma", customer.Name)
	assert.Equal(t, 720, customer.CreditScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDirectory_GetCustomer_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM customers WHERE customer_id = \$1`).
		WithArgs("CUST999").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id"}))

	dir := NewPostgresDirectory(db)
	customer, err := dir.GetCustomer(context.Background(), "CUST999")

	require.NoError(t, err, "absence must not be an error")
	assert.Nil(t, customer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDirectory_GetOffersByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"offer_id", "customer_id", "credit_band", "max_amount",
		"interest_rate", "tenure_months", "processing_fee",
	}).
		AddRow("OFF001", "CUST001", "good", 300000.0, 10.5, 36, 1000.0)
	mock.ExpectQuery(`SELECT (.+) FROM offers WHERE customer_id = \$1 ORDER BY offer_id`).
		WithArgs("CUST001").
		WillReturnRows(rows)

	dir := NewPostgresDirectory(db)
	offers, err := dir.GetOffersByCustomer(context.Background(), "CUST001")

	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "OFF001", offers[0].OfferID)
	assert.Equal(t, 10.5, offers[0].InterestRate)
	assert.Equal(t, 36, offers[0].TenureMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDirectory_SanctionLetterRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO sanction_letters`).
		WithArgs("UW1700000000", "CUST001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	generatedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT customer_id, generated_at FROM sanction_letters WHERE reference_number = \$1`).
		WithArgs("UW1700000000").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "generated_at"}).
			AddRow("CUST001", generatedAt))

	dir := NewPostgresDirectory(db)
	ctx := context.Background()

	require.NoError(t, dir.SaveSanctionLetter(ctx, "CUST001", "UW1700000000"))

	rec, err := dir.GetSanctionLetter(ctx, "UW1700000000")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "CUST001", rec.CustomerID)
	assert.Equal(t, generatedAt, rec.GeneratedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
