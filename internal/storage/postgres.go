// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-workers/internal/models"
)

// PostgresDirectory serves reference data from the loan database. Missing
// rows map to nil results, matching the Directory contract.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const customerColumns = `customer_id, name, age, city, phone, email,
	existing_loan, existing_loan_amount, credit_score, pre_approved_limit,
	employment_type, monthly_net_salary`

func (d *PostgresDirectory) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`,
		customerID,
	)

	var c models.Customer
	err := row.Scan(
		&c.CustomerID, &c.Name, &c.Age, &c.City, &c.Phone, &c.Email,
		&c.ExistingLoan, &c.ExistingLoanAmt, &c.CreditScore, &c.PreApprovedLimit,
		&c.EmploymentType, &c.MonthlyNetSalary,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query customer %s: %w", customerID, err)
	}
	return &c, nil
}

func (d *PostgresDirectory) GetCrmRecord(ctx context.Context, customerID string) (*models.CrmRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT customer_id, name, phone, address, pincode, city, dob
		 FROM crm_records WHERE customer_id = $1`,
		customerID,
	)

	var r models.CrmRecord
	err := row.Scan(&r.CustomerID, &r.Name, &r.Phone, &r.Address, &r.Pincode, &r.City, &r.DOB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query crm record %s: %w", customerID, err)
	}
	return &r, nil
}

const offerColumns = `offer_id, customer_id, credit_band, max_amount,
	interest_rate, tenure_months, processing_fee`

func (d *PostgresDirectory) GetOffers(ctx context.Context) ([]models.LoanOffer, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers ORDER BY offer_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (d *PostgresDirectory) GetOffersByCustomer(ctx context.Context, customerID string) ([]models.LoanOffer, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE customer_id = $1 ORDER BY offer_id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query offers for %s: %w", customerID, err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

func scanOffers(rows *sql.Rows) ([]models.LoanOffer, error) {
	var out []models.LoanOffer
	for rows.Next() {
		var o models.LoanOffer
		if err := rows.Scan(
			&o.OfferID, &o.CustomerID, &o.CreditBand, &o.MaxAmount,
			&o.InterestRate, &o.TenureMonths, &o.ProcessingFee,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (d *PostgresDirectory) SaveSanctionLetter(ctx context.Context, customerID, referenceNumber string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sanction_letters (reference_number, customer_id, generated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (reference_number) DO NOTHING`,
		referenceNumber, customerID,
	)
	if err != nil {
		return fmt.Errorf("save sanction letter %s: %w", referenceNumber, err)
	}
	return nil
}

func (d *PostgresDirectory) GetSanctionLetter(ctx context.Context, referenceNumber string) (*SanctionRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT customer_id, generated_at FROM sanction_letters WHERE reference_number = $1`,
		referenceNumber,
	)

	var rec SanctionRecord
	err := row.Scan(&rec.CustomerID, &rec.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sanction letter %s: %w", referenceNumber, err)
	}
	return &rec, nil
}
