// internal/sanction/renderer.go
package sanction

import (
	"context"
	"fmt"
)

// TextRenderer is the built-in plain-text rendering. Deployments that need
// PDF output plug in their own Renderer.
type TextRenderer struct{}

func (TextRenderer) Render(_ context.Context, letter Letter) ([]byte, error) {
	body := fmt.Sprintf(`LOAN SANCTION LETTER

Reference Number: %s
Date: %s

Dear %s,

We are pleased to inform you that your personal loan has been sanctioned
with the following terms:

  Loan Amount:    %.0f
  Tenure:         %d months
  Interest Rate:  %.2f%% p.a.
  Monthly EMI:    %.0f

This sanction is valid for 30 days from the date of issue. Disbursal is
subject to completion of final documentation.

This is an electronically generated document. Please retain for future
reference.
`,
		letter.ReferenceNumber,
		letter.IssuedAt.Format("2006-01-02"),
		letter.CustomerName,
		letter.LoanAmount,
		letter.TenureMonths,
		letter.AnnualRate,
		letter.MonthlyEMI,
	)
	return []byte(body), nil
}
