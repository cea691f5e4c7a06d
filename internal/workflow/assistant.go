// internal/workflow/assistant.go
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-workers/internal/common/genai"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/conversation"
	"loan-workers/internal/models"
	"loan-workers/internal/similarity"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"

	"github.com/google/uuid"
)

// productMatchThreshold is the minimum cosine score for a fuzzy product
// selection.
const productMatchThreshold = 0.3

// Assistant is the looser conversational mode: free-text intent detection
// and requirement accumulation over the same underwriting contract as the
// staged engine. Identical inputs produce identical EMI and decision
// results in both modes.
type Assistant struct {
	directory     storage.Directory
	underwriter   *underwriting.Engine
	conversations conversation.Store
	generator     genai.TextGenerator
	products      []models.LoanProduct
	logger        logger.Logger
}

func NewAssistant(
	directory storage.Directory,
	underwriter *underwriting.Engine,
	conversations conversation.Store,
	generator genai.TextGenerator,
	products []models.LoanProduct,
	log logger.Logger,
) *Assistant {
	if len(products) == 0 {
		products = DefaultProducts()
	}
	return &Assistant{
		directory:     directory,
		underwriter:   underwriter,
		conversations: conversations,
		generator:     generator,
		products:      products,
		logger:        log.WithFields(map[string]interface{}{"component": "assistant"}),
	}
}

// DefaultProducts is the catalog the assistant selects from by fuzzy name
// match.
func DefaultProducts() []models.LoanProduct {
	return []models.LoanProduct{
		{Name: "Personal Loan", MinAmount: 50000, MaxAmount: 2000000, InterestRate: 12.5, MaxTenure: 60},
		{Name: "Home Loan", MinAmount: 500000, MaxAmount: 50000000, InterestRate: 8.75, MaxTenure: 240},
		{Name: "Business Loan", MinAmount: 100000, MaxAmount: 10000000, InterestRate: 14.0, MaxTenure: 84},
		{Name: "Education Loan", MinAmount: 100000, MaxAmount: 4000000, InterestRate: 10.5, MaxTenure: 120},
	}
}

// ProcessMessage handles one free-text turn. An injected product
// short-circuits requirement gathering for that conversation.
func (a *Assistant) ProcessMessage(ctx context.Context, customerID, message string, injected *models.LoanProduct) (*Reply, error) {
	conv := a.conversations.GetOrCreate(customerID)
	if conv.Profile.Name == "" {
		if customer, err := a.directory.GetCustomer(ctx, customerID); err == nil && customer != nil {
			conv.Profile.Name = customer.Name
			conv.Profile.Email = customer.Email
			conv.Profile.Phone = customer.Phone
			conv.Profile.MonthlyIncome = customer.MonthlyNetSalary
		}
	}
	conv.AddMessage("user", message, "user")
	conv.AddLog("master", "process_message", truncate("User said: "+message, 60), "info")
	conv.SetAgentState("master", conversation.AgentActive, "Processing your request", 10)

	intent := DetectIntent(message)

	if intent == IntentCancel && conv.Stage != conversation.StageGreeting {
		conv.Reset()
		conv.AddLog("master", "cancelled", "Workflow cancelled by customer", "warning")
		return a.reply(conv, "Your application has been cancelled. Say hello whenever you would like to start again."), nil
	}

	if injected != nil {
		a.injectProduct(conv, injected)
	}
	a.extractRequirements(conv, message, intent)
	a.advanceStage(conv)

	var response string
	if intent == IntentConfirmation && a.readyForDecision(conv) {
		decided, err := a.decide(ctx, conv)
		if err != nil {
			return nil, err
		}
		response = decided
	} else {
		response = a.generateResponse(ctx, conv, message, intent)
	}

	conv.AddMessage("agent", response, "master")
	conv.SetAgentState("master", conversation.AgentCompleted, "Response generated", 100)

	return a.reply(conv, response), nil
}

func (a *Assistant) reply(conv *conversation.Context, response string) *Reply {
	logs := conv.WorkflowLog
	if len(logs) > 10 {
		logs = logs[len(logs)-10:]
	}
	return &Reply{
		ID:               uuid.New().String(),
		CustomerID:       conv.CustomerID,
		Message:          response,
		AgentType:        "master",
		Stage:            conv.Stage,
		WorkflowComplete: conv.WorkflowComplete,
		Timestamp:        time.Now().UTC(),
		AgentStates:      conv.AgentStateList(),
		WorkflowLogs:     logs,
	}
}

// injectProduct seeds the requirements from an externally selected product,
// skipping the gathering turns.
func (a *Assistant) injectProduct(conv *conversation.Context, product *models.LoanProduct) {
	conv.Requirements.SelectedProduct = product.Name
	conv.Requirements.LoanType = strings.TrimSuffix(product.Name, " Loan")
	if conv.Requirements.Amount == 0 {
		conv.Requirements.Amount = product.MinAmount
	}
	if conv.Requirements.TenureMonths == 0 {
		conv.Requirements.TenureMonths = product.MaxTenure
	}
	conv.Requirements.Confidence = "high"
	conv.AddLog("sales", "product_injected", fmt.Sprintf("Product: %s", product.Name), "info")
}

func (a *Assistant) extractRequirements(conv *conversation.Context, message string, intent Intent) {
	if conv.Requirements.Confidence == "high" && intent != IntentAmount {
		return
	}

	if lt, ok := ExtractLoanType(message); ok && conv.Requirements.LoanType == "" {
		conv.Requirements.LoanType = lt
	}

	if intent == IntentAmount || intent == IntentLoanType {
		if amount, ok := ParseAmount(message); ok && amount > 0 {
			conv.Requirements.Amount = amount
		}
	}

	if conv.Requirements.SelectedProduct == "" {
		if product, ok := a.matchProduct(message); ok {
			conv.Requirements.SelectedProduct = product.Name
			conv.AddLog("sales", "product_matched", fmt.Sprintf("Product: %s", product.Name), "info")
		}
	}

	switch {
	case conv.Requirements.LoanType != "" && conv.Requirements.Amount > 0:
		conv.Requirements.Confidence = "high"
	case conv.Requirements.LoanType != "" || conv.Requirements.Amount > 0:
		conv.Requirements.Confidence = "medium"
	}
}

// matchProduct fuzzy-searches the catalog by product name.
func (a *Assistant) matchProduct(message string) (*models.LoanProduct, bool) {
	names := make([]string, len(a.products))
	for i, p := range a.products {
		names[i] = p.Name
	}

	results := similarity.FuzzySearch(message, names, productMatchThreshold)
	if len(results) == 0 {
		return nil, false
	}
	for i := range a.products {
		if a.products[i].Name == results[0].Document {
			return &a.products[i], true
		}
	}
	return nil, false
}

func (a *Assistant) advanceStage(conv *conversation.Context) {
	if conv.Stage == conversation.StageGreeting && conv.Requirements.LoanType != "" {
		conv.Advance(conversation.StageSales)
		conv.SetAgentState("sales", conversation.AgentActive, "Processing loan inquiry", 50)
	}
	if conv.Stage == conversation.StageSales && conv.Requirements.Confidence == "high" {
		conv.SetAgentState("sales", conversation.AgentCompleted, "Requirements gathered", 100)
		conv.SetAgentState("verification", conversation.AgentActive, "Ready for verification", 50)
	}
}

func (a *Assistant) readyForDecision(conv *conversation.Context) bool {
	return conv.Requirements.Amount > 0 && conv.UnderwritingResult == nil
}

// decide runs the shared underwriting contract over the gathered
// requirements.
func (a *Assistant) decide(ctx context.Context, conv *conversation.Context) (string, error) {
	rate := defaultOfferRate
	tenure := 36
	if conv.Requirements.SelectedProduct != "" {
		for _, p := range a.products {
			if p.Name == conv.Requirements.SelectedProduct {
				rate = p.InterestRate
				if p.MaxTenure < tenure {
					tenure = p.MaxTenure
				}
				break
			}
		}
	}
	if conv.Requirements.TenureMonths > 0 {
		tenure = conv.Requirements.TenureMonths
	}

	conv.Advance(conversation.StageUnderwriting)
	conv.SetAgentState("underwriting", conversation.AgentActive, "Evaluating credit", 75)

	result, err := a.underwriter.Evaluate(ctx, underwriting.Application{
		CustomerID:        conv.CustomerID,
		LoanAmount:        conv.Requirements.Amount,
		TenureMonths:      tenure,
		AnnualRatePercent: rate,
	})
	if err != nil {
		return "", err
	}

	conv.UnderwritingResult = result
	conv.SetAgentState("underwriting", conversation.AgentCompleted, fmt.Sprintf("Decision: %s", result.Decision), 85)
	conv.AddLog("underwriting", "evaluation", fmt.Sprintf("Decision: %s", result.Decision), "info")

	if result.Decision != models.DecisionApprove {
		conv.Advance(conversation.StageClosed)
		return fmt.Sprintf("I'm sorry, we're unable to approve this application.\n\n%s", result.Reason), nil
	}

	conv.Advance(conversation.StageSanction)
	return fmt.Sprintf("Great news! Your loan is approved.\n\n%s\n\nMonthly EMI: ₹%.0f", result.Reason, result.EMI), nil
}

// generateResponse asks the text-generation service for a reply and falls
// back to the deterministic keyword responses when it is unavailable.
func (a *Assistant) generateResponse(ctx context.Context, conv *conversation.Context, message string, intent Intent) string {
	if a.generator != nil {
		if text, err := a.generator.Generate(ctx, a.buildPrompt(conv, message)); err == nil {
			return text
		} else {
			conv.AddLog("master", "ai_fallback", "Using deterministic response: "+err.Error(), "warning")
		}
	}
	return a.fallbackResponse(conv, intent)
}

func (a *Assistant) buildPrompt(conv *conversation.Context, message string) string {
	var parts []string
	parts = append(parts, "You are a loan assistant for a personal-loan service. Answer briefly and helpfully.")
	if conv.Profile.Name != "" {
		parts = append(parts, fmt.Sprintf("Customer name: %s", conv.Profile.Name))
	}
	if conv.Requirements.LoanType != "" {
		parts = append(parts, fmt.Sprintf("Loan type: %s", conv.Requirements.LoanType))
	}
	if conv.Requirements.Amount > 0 {
		parts = append(parts, fmt.Sprintf("Requested amount: %.0f", conv.Requirements.Amount))
	}
	for _, m := range conv.RecentMessages(8) {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	parts = append(parts, fmt.Sprintf("user: %s", message))
	parts = append(parts, "Answer:")
	return strings.Join(parts, "\n")
}

func (a *Assistant) fallbackResponse(conv *conversation.Context, intent Intent) string {
	name := firstName(conv.Profile.Name)

	switch intent {
	case IntentGreeting:
		return fmt.Sprintf("Hello %s! I'm your loan assistant.\n\n"+
			"I can help you with:\n- Personal Loan\n- Home Loan\n- Business Loan\n- Education Loan\n\n"+
			"What type of loan are you looking for today?", name)
	case IntentLoanType:
		return fmt.Sprintf("Great choice, %s! I'll help you with a %s Loan.\n\n"+
			"Based on your profile, here's a pre-approved range:\n"+
			"- Amount: up to ₹5,00,000\n- Tenure: 12-60 months\n- Interest Rate: 10.5%% - 12.5%% p.a.\n\n"+
			"Tell me the specific amount you're looking for.", name, orDefault(conv.Requirements.LoanType, "Personal"))
	case IntentAmount:
		return fmt.Sprintf("Perfect! I've noted your loan amount preference.\n\n"+
			"- Loan Type: %s Loan\n- Amount: ₹%.0f\n\n"+
			"Do you confirm these details?", orDefault(conv.Requirements.LoanType, "Personal"), conv.Requirements.Amount)
	case IntentConfirmation:
		return "Excellent! Your details have been verified. Running credit assessment now..."
	case IntentStatus:
		return fmt.Sprintf("Here's your application status, %s:\n\n"+
			"Stage: %s\nLoan Type: %s\nAmount: ₹%.0f",
			name, conv.Stage, orDefault(conv.Requirements.LoanType, "-"), conv.Requirements.Amount)
	}

	return fmt.Sprintf("I understand, %s. You can tell me:\n"+
		"- The type of loan you need (Personal/Home/Business/Education)\n"+
		"- The loan amount you're looking for\n"+
		"- Your preferred tenure\n\n"+
		"How can I assist you today?", name)
}

func firstName(full string) string {
	if full == "" {
		return "Customer"
	}
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
