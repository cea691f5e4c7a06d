// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
	"time"

	"loan-workers/internal/models"
)

// MemoryDirectory is the seeded in-process directory used when no database
// is configured. The data set is recreated on every process start.
type MemoryDirectory struct {
	customers map[string]models.Customer
	crm       map[string]models.CrmRecord
	offers    []models.LoanOffer

	mu      sync.Mutex
	letters map[string]SanctionRecord
}

// NewSeededDirectory builds a directory pre-loaded with the synthetic
// customer base, CRM records and pre-approved offers.
func NewSeededDirectory() *MemoryDirectory {
	d := &MemoryDirectory{
		customers: make(map[string]models.Customer),
		crm:       make(map[string]models.CrmRecord),
		letters:   make(map[string]SanctionRecord),
	}
	for _, c := range seedCustomers() {
		d.customers[c.CustomerID] = c
	}
	for _, r := range seedCrmRecords() {
		d.crm[r.CustomerID] = r
	}
	d.offers = seedOffers()
	return d
}

func (d *MemoryDirectory) GetCustomer(_ context.Context, customerID string) (*models.Customer, error) {
	if c, ok := d.customers[customerID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (d *MemoryDirectory) GetCrmRecord(_ context.Context, customerID string) (*models.CrmRecord, error) {
	if r, ok := d.crm[customerID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (d *MemoryDirectory) GetOffers(_ context.Context) ([]models.LoanOffer, error) {
	out := make([]models.LoanOffer, len(d.offers))
	copy(out, d.offers)
	return out, nil
}

func (d *MemoryDirectory) GetOffersByCustomer(_ context.Context, customerID string) ([]models.LoanOffer, error) {
	var out []models.LoanOffer
	for _, o := range d.offers {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) SaveSanctionLetter(_ context.Context, customerID, referenceNumber string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.letters[referenceNumber] = SanctionRecord{
		CustomerID:  customerID,
		GeneratedAt: time.Now().UTC(),
	}
	return nil
}

func (d *MemoryDirectory) GetSanctionLetter(_ context.Context, referenceNumber string) (*SanctionRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rec, ok := d.letters[referenceNumber]; ok {
		return &rec, nil
	}
	return nil, nil
}

func seedCustomers() []models.Customer {
	return []models.Customer{
		{CustomerID: "CUST001", Name: "Anita Verma", Age: 29, City: "Delhi", Phone: "+91-9810000001", Email: "anita.verma@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 720, PreApprovedLimit: 150000, EmploymentType: "Salaried", MonthlyNetSalary: 65000},
		{CustomerID: "CUST002", Name: "Rahul Mehra", Age: 35, City: "Mumbai", Phone: "+91-9810000002", Email: "rahul.mehra@example.com", ExistingLoan: "yes", ExistingLoanAmt: 250000, CreditScore: 680, PreApprovedLimit: 100000, EmploymentType: "Salaried", MonthlyNetSalary: 85000},
		{CustomerID: "CUST003", Name: "Sneha Kapoor", Age: 42, City: "Bengaluru", Phone: "+91-9810000003", Email: "sneha.kapoor@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 790, PreApprovedLimit: 200000, EmploymentType: "Self-Employed", MonthlyNetSalary: 120000},
		{CustomerID: "CUST004", Name: "Prakash Singh", Age: 31, City: "Chandigarh", Phone: "+91-9810000004", Email: "prakash.singh@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 695, PreApprovedLimit: 90000, EmploymentType: "Salaried", MonthlyNetSalary: 40000},
		{CustomerID: "CUST005", Name: "Meera Nair", Age: 27, City: "Hyderabad", Phone: "+91-9810000005", Email: "meera.nair@example.com", ExistingLoan: "yes", ExistingLoanAmt: 120000, CreditScore: 710, PreApprovedLimit: 110000, EmploymentType: "Salaried", MonthlyNetSalary: 50000},
		{CustomerID: "CUST006", Name: "Aditya Rao", Age: 38, City: "Pune", Phone: "+91-9810000006", Email: "aditya.rao@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 650, PreApprovedLimit: 80000, EmploymentType: "Self-Employed", MonthlyNetSalary: 95000},
		{CustomerID: "CUST007", Name: "Sunita Ghosh", Age: 45, City: "Kolkata", Phone: "+91-9810000007", Email: "sunita.ghosh@example.com", ExistingLoan: "yes", ExistingLoanAmt: 500000, CreditScore: 730, PreApprovedLimit: 250000, EmploymentType: "Salaried", MonthlyNetSalary: 180000},
		{CustomerID: "CUST008", Name: "Dev Patel", Age: 30, City: "Ahmedabad", Phone: "+91-9810000008", Email: "dev.patel@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 770, PreApprovedLimit: 160000, EmploymentType: "Salaried", MonthlyNetSalary: 70000},
		{CustomerID: "CUST009", Name: "Ritika Sharma", Age: 33, City: "Jaipur", Phone: "+91-9810000009", Email: "ritika.sharma@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 640, PreApprovedLimit: 60000, EmploymentType: "Self-Employed", MonthlyNetSalary: 55000},
		{CustomerID: "CUST010", Name: "Karan Verma", Age: 28, City: "Noida", Phone: "+91-9810000010", Email: "karan.verma@example.com", ExistingLoan: "no", ExistingLoanAmt: 0, CreditScore: 705, PreApprovedLimit: 95000, EmploymentType: "Salaried", MonthlyNetSalary: 48000},
	}
}

func seedCrmRecords() []models.CrmRecord {
	return []models.CrmRecord{
		{CustomerID: "CUST001", Name: "Anita Verma", Phone: "+91-9810000001", Address: "123 Green Park, South Delhi", Pincode: "110016", City: "Delhi", DOB: "1995-03-15"},
		{CustomerID: "CUST002", Name: "Rahul Mehra", Phone: "+91-9810000002", Address: "456 Bandra West, Mumbai", Pincode: "400050", City: "Mumbai", DOB: "1989-07-22"},
		{CustomerID: "CUST003", Name: "Sneha Kapoor", Phone: "+91-9810000003", Address: "789 Indiranagar, Bangalore", Pincode: "560038", City: "Bengaluru", DOB: "1982-11-08"},
		{CustomerID: "CUST004", Name: "Prakash Singh", Phone: "+91-9810000004", Address: "101 Sector 17, Chandigarh", Pincode: "160017", City: "Chandigarh", DOB: "1993-05-30"},
		{CustomerID: "CUST005", Name: "Meera Nair", Phone: "+91-9810000005", Address: "202 Banjara Hills, Hyderabad", Pincode: "500034", City: "Hyderabad", DOB: "1997-09-12"},
		{CustomerID: "CUST006", Name: "Aditya Rao", Phone: "+91-9810000006", Address: "303 Koregaon Park, Pune", Pincode: "411001", City: "Pune", DOB: "1986-01-25"},
		{CustomerID: "CUST007", Name: "Sunita Ghosh", Phone: "+91-9810000007", Address: "404 Salt Lake, Kolkata", Pincode: "700091", City: "Kolkata", DOB: "1979-04-18"},
		{CustomerID: "CUST008", Name: "Dev Patel", Phone: "+91-9810000008", Address: "505 SG Highway, Ahmedabad", Pincode: "380054", City: "Ahmedabad", DOB: "1994-12-03"},
		{CustomerID: "CUST009", Name: "Ritika Sharma", Phone: "+91-9810000009", Address: "606 C-Scheme, Jaipur", Pincode: "302001", City: "Jaipur", DOB: "1991-08-20"},
		{CustomerID: "CUST010", Name: "Karan Verma", Phone: "+91-9810000010", Address: "707 Sector 62, Noida", Pincode: "201301", City: "Noida", DOB: "1996-06-14"},
	}
}

func seedOffers() []models.LoanOffer {
	return []models.LoanOffer{
		{OfferID: "OFF001", CustomerID: "CUST001", CreditBand: models.CreditBandGood, MaxAmount: 300000, InterestRate: 10.5, TenureMonths: 36, ProcessingFee: 1000},
		{OfferID: "OFF002", CustomerID: "CUST002", CreditBand: models.CreditBandFair, MaxAmount: 200000, InterestRate: 12.5, TenureMonths: 24, ProcessingFee: 1500},
		{OfferID: "OFF003", CustomerID: "CUST003", CreditBand: models.CreditBandExcellent, MaxAmount: 500000, InterestRate: 9.5, TenureMonths: 48, ProcessingFee: 500},
		{OfferID: "OFF004", CustomerID: "CUST004", CreditBand: models.CreditBandFair, MaxAmount: 180000, InterestRate: 13.0, TenureMonths: 24, ProcessingFee: 1500},
		{OfferID: "OFF005", CustomerID: "CUST005", CreditBand: models.CreditBandGood, MaxAmount: 220000, InterestRate: 11.0, TenureMonths: 36, ProcessingFee: 1000},
		{OfferID: "OFF006", CustomerID: "CUST006", CreditBand: models.CreditBandPoor, MaxAmount: 160000, InterestRate: 14.0, TenureMonths: 24, ProcessingFee: 2000},
		{OfferID: "OFF007", CustomerID: "CUST007", CreditBand: models.CreditBandGood, MaxAmount: 500000, InterestRate: 10.0, TenureMonths: 48, ProcessingFee: 1000},
		{OfferID: "OFF008", CustomerID: "CUST008", CreditBand: models.CreditBandExcellent, MaxAmount: 320000, InterestRate: 9.75, TenureMonths: 36, ProcessingFee: 500},
		{OfferID: "OFF009", CustomerID: "CUST009", CreditBand: models.CreditBandPoor, MaxAmount: 120000, InterestRate: 14.5, TenureMonths: 24, ProcessingFee: 2000},
		{OfferID: "OFF010", CustomerID: "CUST010", CreditBand: models.CreditBandGood, MaxAmount: 190000, InterestRate: 11.5, TenureMonths: 36, ProcessingFee: 1000},
	}
}
