// internal/workflow/engine.go

// Package workflow drives the loan conversation. The master engine walks a
// fixed stage order (greeting, sales, kyc, underwriting, sanction, closed);
// the assistant variant layers free-text intent detection over the same
// underwriting contracts.
package workflow

import (
	"context"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/conversation"
	"loan-workers/internal/kyc"
	"loan-workers/internal/models"
	"loan-workers/internal/sanction"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"

	"github.com/google/uuid"
)

// Default offer used when the catalog is empty.
const (
	defaultOfferName   = "Standard Personal Loan"
	defaultOfferAmount = 500000
	defaultOfferRate   = 12.5
	defaultOfferTenure = 60
)

// Reply is the outbound payload for one processed message.
type Reply struct {
	ID               string                   `json:"id"`
	CustomerID       string                   `json:"customerId"`
	Message          string                   `json:"message"`
	AgentType        string                   `json:"agentType"`
	Stage            conversation.Stage       `json:"stage"`
	WorkflowComplete bool                     `json:"workflow_complete"`
	Timestamp        time.Time                `json:"timestamp"`
	AgentStates      []conversation.AgentState `json:"agentStates"`
	WorkflowLogs     []conversation.LogEntry  `json:"workflowLogs"`
}

// Engine is the staged master workflow. It owns no conversation state
// itself; everything lives in the injected store.
type Engine struct {
	directory     storage.Directory
	underwriter   *underwriting.Engine
	verifier      *kyc.Verifier
	sanctions     *sanction.Service
	conversations conversation.Store
	logger        logger.Logger
}

func NewEngine(
	directory storage.Directory,
	underwriter *underwriting.Engine,
	verifier *kyc.Verifier,
	sanctions *sanction.Service,
	conversations conversation.Store,
	log logger.Logger,
) *Engine {
	return &Engine{
		directory:     directory,
		underwriter:   underwriter,
		verifier:      verifier,
		sanctions:     sanctions,
		conversations: conversations,
		logger:        log.WithFields(map[string]interface{}{"component": "workflow"}),
	}
}

// Process runs one inbound message through the current stage handler and
// returns the outbound reply. An unexpected handler error produces an
// apology and leaves the conversation in its pre-error state.
func (e *Engine) Process(ctx context.Context, customerID, message string) (*Reply, error) {
	conv := e.conversations.GetOrCreate(customerID)
	conv.AddMessage("user", message, "user")
	conv.AddLog("master", "receive", truncate("Message: "+message, 60), "info")

	var response string

	if DetectIntent(message) == IntentCancel && conv.Stage != conversation.StageGreeting {
		conv.Reset()
		conv.AddLog("master", "cancelled", "Workflow cancelled by customer", "warning")
		response = "Your application has been cancelled. Say hello whenever you would like to start again."
	} else {
		stageBefore := conv.Stage
		handled, err := e.dispatch(ctx, conv, message)
		if err != nil {
			conv.Stage = stageBefore
			conv.AddLog("master", "error", err.Error(), "error")
			e.logger.WithError(err).Error("stage handler failed", map[string]interface{}{
				"customer_id": customerID,
				"stage":       string(stageBefore),
			})
			handled = "I apologize, something went wrong on our side. Please try again."
		}
		response = handled
	}

	conv.AddMessage("agent", response, "master")

	return &Reply{
		ID:               uuid.New().String(),
		CustomerID:       customerID,
		Message:          response,
		AgentType:        "master",
		Stage:            conv.Stage,
		WorkflowComplete: conv.WorkflowComplete,
		Timestamp:        time.Now().UTC(),
		AgentStates:      conv.AgentStateList(),
		WorkflowLogs:     conv.WorkflowLog,
	}, nil
}

func (e *Engine) dispatch(ctx context.Context, conv *conversation.Context, message string) (string, error) {
	switch conv.Stage {
	case conversation.StageGreeting:
		return e.handleGreeting(ctx, conv)
	case conversation.StageSales:
		return e.handleSales(ctx, conv, message)
	case conversation.StageKYC:
		return e.handleKYC(ctx, conv)
	case conversation.StageUnderwriting:
		return e.handleUnderwriting(ctx, conv)
	case conversation.StageSanction:
		return e.handleSanction(ctx, conv)
	case conversation.StageClosed:
		return e.handleClosed(conv), nil
	}
	return "", fmt.Errorf("unknown stage %q", conv.Stage)
}

func (e *Engine) handleGreeting(ctx context.Context, conv *conversation.Context) (string, error) {
	conv.SetAgentState("master", conversation.AgentActive, "Greeting customer", 10)
	conv.AddLog("master", "stage", "Entering greeting stage", "info")

	customer, err := e.directory.GetCustomer(ctx, conv.CustomerID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "Welcome! I'm your loan assistant. Please provide your Customer ID (e.g., CUST001) to continue.", nil
	}

	conv.Profile.Name = customer.Name
	conv.Profile.Email = customer.Email
	conv.Profile.Phone = customer.Phone
	conv.Profile.MonthlyIncome = customer.MonthlyNetSalary

	conv.Advance(conversation.StageSales)
	conv.AddLog("master", "customer_found", fmt.Sprintf("Customer %s identified", customer.Name), "success")
	conv.SetAgentState("sales", conversation.AgentActive, "Preparing offer", 30)

	return fmt.Sprintf("Welcome to our Personal Loan Service, %s!\n\n"+
		"I'm your loan assistant. With our fast approval process you could have funds within 24 hours.\n\n"+
		"Let me share a personalized offer based on your profile. First, a few quick details.", customer.Name), nil
}

func (e *Engine) handleSales(ctx context.Context, conv *conversation.Context, message string) (string, error) {
	conv.SetAgentState("sales", conversation.AgentActive, "Negotiating terms", 35)
	conv.AddLog("master", "stage", "Entering sales stage", "info")

	// Pull whatever facts this message carries.
	if conv.Profile.Age == nil {
		if age, ok := ExtractAge(message); ok {
			conv.Profile.Age = &age
		}
	}
	if conv.Profile.EmploymentType == "" {
		if et, ok := ExtractEmploymentType(message); ok {
			conv.Profile.EmploymentType = et
		}
	}
	if conv.Profile.ExistingLoans == "" {
		if el, ok := ExtractExistingLoan(message); ok {
			conv.Profile.ExistingLoans = el
		}
	}

	// One follow-up question per turn, fixed priority.
	switch {
	case conv.Profile.Age == nil:
		return "Before we proceed, could you please tell me your age?", nil
	case conv.Profile.EmploymentType == "":
		return "Are you Salaried or Self-Employed?", nil
	case conv.Profile.ExistingLoans == "":
		return "Do you have any existing loans? (Yes/No)", nil
	}

	offer, err := e.negotiateOffer(ctx)
	if err != nil {
		return "", err
	}
	conv.Offer = offer
	conv.Profile.MonthlyEMI = underwriting.CalculateEMI(offer.Amount, offer.Rate, offer.TenureMonths)

	conv.AddLog("sales", "offer_prepared", fmt.Sprintf("Offer: ₹%.0f", offer.Amount), "success")
	conv.SetAgentState("sales", conversation.AgentCompleted, "Offer prepared", 50)

	conv.Advance(conversation.StageKYC)
	conv.SetAgentState("verification", conversation.AgentActive, "Starting KYC verification", 50)

	return fmt.Sprintf("Great! I've prepared a personalized offer for you, %s:\n\n"+
		"- Loan Amount: ₹%.0f\n"+
		"- Interest Rate: %.1f%% p.a.\n"+
		"- Tenure: %d months\n"+
		"- Monthly EMI: ₹%.0f\n\n"+
		"Next step: let me verify your KYC details to proceed. Please confirm to continue.",
		conv.Profile.Name, offer.Amount, offer.Rate, offer.TenureMonths, conv.Profile.MonthlyEMI), nil
}

// negotiateOffer selects the first catalog offer, or the fixed default when
// the catalog is empty.
func (e *Engine) negotiateOffer(ctx context.Context) (*conversation.Offer, error) {
	offers, err := e.directory.GetOffers(ctx)
	if err != nil {
		return nil, err
	}
	if len(offers) > 0 {
		first := offers[0]
		return &conversation.Offer{
			Name:         defaultOfferName,
			Amount:       first.MaxAmount,
			Rate:         first.InterestRate,
			TenureMonths: first.TenureMonths,
		}, nil
	}
	return &conversation.Offer{
		Name:         defaultOfferName,
		Amount:       defaultOfferAmount,
		Rate:         defaultOfferRate,
		TenureMonths: defaultOfferTenure,
	}, nil
}

func (e *Engine) handleKYC(ctx context.Context, conv *conversation.Context) (string, error) {
	conv.SetAgentState("verification", conversation.AgentActive, "Verifying KYC", 60)
	conv.AddLog("master", "stage", "Entering KYC verification stage", "info")

	customer, err := e.directory.GetCustomer(ctx, conv.CustomerID)
	if err != nil {
		return "", err
	}

	details := kyc.Details{
		Name:  conv.Profile.Name,
		Phone: conv.Profile.Phone,
	}
	if customer != nil {
		details.Address = customer.City
	}

	result, err := e.verifier.Verify(ctx, conv.CustomerID, details)
	if err != nil {
		return "", err
	}

	conv.KYCVerified = result.Verified
	level := "success"
	if !result.Verified {
		level = "warning"
	}
	conv.AddLog("verification", "kyc_check", fmt.Sprintf("KYC status: %s", result.Status), level)
	conv.SetAgentState("verification", conversation.AgentCompleted, "KYC verification complete", 70)

	if !result.Verified {
		// Workflow halts here; the stage does not advance.
		return "KYC verification failed. Please contact our support team.", nil
	}

	conv.Advance(conversation.StageUnderwriting)
	conv.SetAgentState("underwriting", conversation.AgentActive, "Starting credit evaluation", 70)

	return "KYC verification complete. All checks passed!\n\n" +
		"Now let me evaluate your credit profile and provide an instant decision.", nil
}

func (e *Engine) handleUnderwriting(ctx context.Context, conv *conversation.Context) (string, error) {
	conv.SetAgentState("underwriting", conversation.AgentActive, "Evaluating credit", 75)
	conv.AddLog("master", "stage", "Entering underwriting stage", "info")

	offer := conv.Offer
	if offer == nil {
		return "", fmt.Errorf("underwriting reached with no negotiated offer")
	}

	result, err := e.underwriter.Evaluate(ctx, underwriting.Application{
		CustomerID:        conv.CustomerID,
		LoanAmount:        offer.Amount,
		TenureMonths:      offer.TenureMonths,
		AnnualRatePercent: offer.Rate,
	})
	if err != nil {
		return "", err
	}

	conv.UnderwritingResult = result
	level := "success"
	if result.Decision != models.DecisionApprove {
		level = "warning"
	}
	conv.AddLog("underwriting", "evaluation", fmt.Sprintf("Decision: %s", result.Decision), level)
	conv.SetAgentState("underwriting", conversation.AgentCompleted, fmt.Sprintf("Decision: %s", result.Decision), 85)

	if result.Decision != models.DecisionApprove {
		conv.Stage = conversation.StageClosed
		conv.AddLog("master", "workflow_end", fmt.Sprintf("Loan %s", result.Decision), "warning")
		return fmt.Sprintf("Unfortunately, we're unable to proceed with your application at this time.\n\n%s\n\n"+
			"Thank you for considering us.", result.Reason), nil
	}

	conv.Advance(conversation.StageSanction)
	conv.SetAgentState("sanction", conversation.AgentActive, "Generating sanction letter", 90)

	return fmt.Sprintf("Great news! Your loan has been APPROVED.\n\n%s\n\n"+
		"Monthly EMI: ₹%.0f\n\n"+
		"Now let me generate your official sanction letter...", result.Reason, result.EMI), nil
}

func (e *Engine) handleSanction(ctx context.Context, conv *conversation.Context) (string, error) {
	conv.SetAgentState("sanction", conversation.AgentActive, "Generating letter", 95)
	conv.AddLog("master", "stage", "Entering sanction letter generation", "info")

	offer := conv.Offer
	if offer == nil {
		return "", fmt.Errorf("sanction reached with no negotiated offer")
	}

	issued, err := e.sanctions.Generate(ctx, sanction.Letter{
		CustomerID:   conv.CustomerID,
		CustomerName: conv.Profile.Name,
		LoanAmount:   offer.Amount,
		TenureMonths: offer.TenureMonths,
		AnnualRate:   offer.Rate,
		MonthlyEMI:   conv.Profile.MonthlyEMI,
	})
	if err != nil {
		return "", err
	}

	conv.SanctionReference = issued.ReferenceNumber
	conv.WorkflowComplete = true
	conv.Advance(conversation.StageClosed)

	conv.AddLog("sanction", "letter_generated", fmt.Sprintf("Reference: %s", issued.ReferenceNumber), "success")
	conv.SetAgentState("sanction", conversation.AgentCompleted, "Sanction letter ready", 100)
	conv.SetAgentState("master", conversation.AgentCompleted, "Workflow complete", 100)

	return fmt.Sprintf("Your sanction letter has been generated!\n\n"+
		"Reference Number: %s\n"+
		"Amount: ₹%.0f\n"+
		"EMI: ₹%.0f/month\n"+
		"Tenure: %d months\n\n"+
		"Funds will be disbursed within 24 hours of final documentation. Thank you for choosing us!",
		issued.ReferenceNumber, offer.Amount, conv.Profile.MonthlyEMI, offer.TenureMonths), nil
}

// handleClosed is idempotent; further messages replay the final summary.
func (e *Engine) handleClosed(conv *conversation.Context) string {
	if conv.WorkflowComplete {
		amount := 0.0
		if conv.Offer != nil {
			amount = conv.Offer.Amount
		}
		return fmt.Sprintf("Your loan application is complete.\n\n"+
			"- Reference Number: %s\n"+
			"- Status: APPROVED & SANCTIONED\n"+
			"- Amount: ₹%.0f\n\n"+
			"Please keep your sanction letter safe for future reference.", conv.SanctionReference, amount)
	}

	reason := "Please contact our support team for more information."
	if conv.UnderwritingResult != nil {
		reason = conv.UnderwritingResult.Reason
	}
	return fmt.Sprintf("Your application has been closed.\n\n%s", reason)
}

// truncate caps s at n runes. Messages carry ₹ amounts and non-ASCII
// names, so cutting on a byte index could split a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

