package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/llm"
	"github.com/nexora-hq/nexora/internal/policy"
)

// Intents that are meaningless without a target invoice. For these the
// resolver asks for clarification instead of guessing; no query runs.
var needsContext = map[string]bool{
	domain.IntentTotal:     true,
	domain.IntentTax:       true,
	domain.IntentDiscount:  true,
	domain.IntentDueDate:   true,
	domain.IntentIssueDate: true,
	domain.IntentSubtotal:  true,
}

const clarificationAnswer = "Please provide the **customer name** or **invoice number**."

// customerPatterns pull a candidate customer name out of phrasing like
// "total for acme corp" or "discount given to chandrahaas". The "to" form
// is tried second because it over-captures in sentences like "I want to
// know the total for acme".
var customerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:for|about|of)\s+([a-zA-Z0-9\s]+?)(?:\s+(?:tell|show|give|get|check|calculate|is|the|due|issue|tax|total|discount|invoice)|$)`),
	regexp.MustCompile(`(?i)to\s+([a-zA-Z0-9\s]+?)(?:\s+(?:tell|show|give|get|check|calculate|is|the|due|issue|tax|total|discount|invoice)|$)`),
}

var fillerWords = regexp.MustCompile(`(?i)\b(me|us|please|details|invoice)\b`)

// chatQuery is what the resolver extracts from a message: the question's
// intent plus whichever invoice selector it could find.
type chatQuery struct {
	Intent        string
	Customer      string
	InvoiceNumber string
}

// providerExtraction is the tolerated shape of the completion-service JSON.
// Models put the selectors in several places; all are checked.
type providerExtraction struct {
	Intent        string                 `json:"intent"`
	Action        string                 `json:"action"`
	Query         map[string]interface{} `json:"query"`
	Customer      string                 `json:"customer"`
	InvoiceNumber string                 `json:"invoiceNumber"`
}

// ChatService resolves natural-language invoice questions into scoped
// queries and synthesized answers. Resolution is deterministic-first: the
// completion service refines, it never widens, and every query carries the
// caller's tenancy filter.
type ChatService struct {
	invoiceRepo domain.InvoiceRepository
	provider    llm.CompletionProvider
}

// NewChatService creates a new chat service
func NewChatService(invoiceRepo domain.InvoiceRepository, provider llm.CompletionProvider) *ChatService {
	return &ChatService{invoiceRepo: invoiceRepo, provider: provider}
}

// Ask answers one invoice question for the actor.
func (s *ChatService) Ask(ctx context.Context, actor domain.Actor, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.InvalidInput("message required")
	}

	q := s.resolve(ctx, message, req.History)

	if needsContext[q.Intent] && q.Customer == "" && q.InvoiceNumber == "" {
		return &domain.ChatResponse{Answer: clarificationAnswer, Data: []domain.Invoice{}}, nil
	}

	filter := policy.ChatFilter(actor)
	if q.InvoiceNumber != "" {
		filter["invoiceNumber"] = q.InvoiceNumber
	} else if q.Customer != "" {
		filter["customer.name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Customer), Options: "i"}
	}

	var sort bson.D
	var limit int64
	if q.Intent == domain.IntentLatestInvoice {
		sort = bson.D{{Key: "issueDate", Value: -1}}
		limit = 1
	} else {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	invoices, err := s.invoiceRepo.Find(ctx, filter, sort, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	if len(invoices) == 0 {
		target := q.Customer
		if target == "" {
			target = q.InvoiceNumber
		}
		if target == "" {
			target = "this request"
		}
		answer := fmt.Sprintf("No invoices found for **%s**.", target)
		return &domain.ChatResponse{Answer: answer, Data: []domain.Invoice{}}, nil
	}

	return &domain.ChatResponse{Answer: synthesizeAnswer(q, invoices), Data: invoices}, nil
}

// resolve runs the extraction pipeline: keyword intent, completion-service
// refinement, regex fallback, then conversation history.
func (s *ChatService) resolve(ctx context.Context, message string, history []domain.ChatTurn) chatQuery {
	q := chatQuery{Intent: detectIntent(message)}

	s.refineWithProvider(ctx, message, &q)

	// Decided here, before history fills intent in: a short message with no
	// question of its own is treated as a name-only follow-up.
	bareName := q.Intent == "" && len(strings.Fields(message)) <= 3

	if q.Customer == "" && q.InvoiceNumber == "" {
		for _, pattern := range customerPatterns {
			m := pattern.FindStringSubmatch(message)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(fillerWords.ReplaceAllString(m[1], ""))
			if len(name) > 2 {
				q.Customer = name
				break
			}
		}
	}

	if q.Customer == "" && q.InvoiceNumber == "" {
		q.Customer = customerFromHistory(history)
	}

	// A bare name like "Chandrahaas" carries no intent of its own; recover
	// one from the conversation so the follow-up answers the same question.
	if bareName {
		q.Intent = intentFromHistory(history)
	}

	if bareName && q.Customer == "" && q.InvoiceNumber == "" {
		q.Customer = strings.TrimSpace(message)
	}

	if q.Intent == "" {
		q.Intent = domain.IntentInvoiceDetails
	}
	return q
}

// refineWithProvider asks the completion service for a structured reading of
// the message. Provider output only fills blanks; failures are logged and
// ignored so the resolver stays available when the provider is down.
func (s *ChatService) refineWithProvider(ctx context.Context, message string, q *chatQuery) {
	if s.provider == nil || !s.provider.IsConfigured() {
		return
	}

	raw, err := s.provider.Complete(ctx, llm.InvoiceChatPrompt(message))
	if err != nil {
		log.Warn().Err(err).Msg("chat extraction failed, continuing with keyword resolution")
		return
	}
	extracted := llm.ExtractJSON(raw)
	if extracted == "" {
		return
	}

	var ext providerExtraction
	if err := json.Unmarshal([]byte(extracted), &ext); err != nil {
		log.Warn().Err(err).Msg("chat extraction returned malformed JSON")
		return
	}

	if q.Intent == "" && ext.Intent != "" {
		q.Intent = ext.Intent
	}
	if name, ok := ext.Query["customer.name"].(string); ok && name != "" {
		q.Customer = name
	}
	if num, ok := ext.Query["invoiceNumber"].(string); ok && num != "" {
		q.InvoiceNumber = num
	}
	if q.Customer == "" && ext.Customer != "" {
		q.Customer = ext.Customer
	}
	if q.InvoiceNumber == "" && ext.InvoiceNumber != "" {
		q.InvoiceNumber = ext.InvoiceNumber
	}
}

// detectIntent maps keyword hits to an intent. Order matters: "subtotal"
// contains "total", "discount" questions often mention totals too.
func detectIntent(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "discount"):
		return domain.IntentDiscount
	case strings.Contains(m, "total") && !strings.Contains(m, "subtotal"):
		return domain.IntentTotal
	case strings.Contains(m, "tax"):
		return domain.IntentTax
	case strings.Contains(m, "due date"):
		return domain.IntentDueDate
	case strings.Contains(m, "issue date") || strings.Contains(m, "issued date"):
		return domain.IntentIssueDate
	case strings.Contains(m, "subtotal"):
		return domain.IntentSubtotal
	case strings.Contains(m, "latest") || strings.Contains(m, "recent"):
		return domain.IntentLatestInvoice
	case strings.Contains(m, "show") || strings.Contains(m, "invoice"):
		return domain.IntentInvoiceDetails
	}
	return ""
}

// intentFromHistory scans prior turns most-recent-first for a question the
// current bare-name message is answering.
func intentFromHistory(history []domain.ChatTurn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if intent := detectIntent(history[i].Text); intent != "" && intent != domain.IntentLatestInvoice && intent != domain.IntentInvoiceDetails {
			return intent
		}
	}
	return ""
}

// customerFromHistory recovers the conversation subject from the most recent
// AI turn that carried result rows.
func customerFromHistory(history []domain.ChatTurn) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role == domain.ChatRoleAI && len(turn.Data) > 0 {
			return turn.Data[0].Customer.Name
		}
	}
	return ""
}

// synthesizeAnswer renders the matched rows per intent. Money is formatted
// in rupees; total, tax and discount sum across every matched row.
func synthesizeAnswer(q chatQuery, invoices []domain.Invoice) string {
	name := invoices[0].Customer.Name

	switch q.Intent {
	case domain.IntentTotal:
		var sum float64
		for _, inv := range invoices {
			sum += inv.TotalAmount
		}
		return fmt.Sprintf("The total amount for **%s** is %s.", name, formatINR(sum))

	case domain.IntentSubtotal:
		// Subtotal reads from the first row; unlike total/tax/discount it
		// does not sum across matches.
		return fmt.Sprintf("The subtotal for **%s** is %s.", name, formatINR(invoices[0].Subtotal))

	case domain.IntentTax:
		var sum float64
		for _, inv := range invoices {
			sum += inv.TaxAmount
		}
		return fmt.Sprintf("The total tax for **%s** is %s.", name, formatINR(sum))

	case domain.IntentDiscount:
		var sum float64
		for _, inv := range invoices {
			sum += inv.Discount
		}
		return fmt.Sprintf("The total discount given to **%s** is %s.", name, formatINR(sum))

	case domain.IntentDueDate:
		inv := invoices[0]
		if inv.DueDate == nil {
			return fmt.Sprintf("Invoice **%s** for **%s** has no due date.", inv.InvoiceNumber, name)
		}
		return fmt.Sprintf("The due date for invoice **%s** is %s.", inv.InvoiceNumber, inv.DueDate.Format("2 January 2006"))

	case domain.IntentIssueDate:
		inv := invoices[0]
		return fmt.Sprintf("Invoice **%s** was issued on %s.", inv.InvoiceNumber, inv.IssueDate.Format("2 January 2006"))

	case domain.IntentLatestInvoice:
		inv := invoices[0]
		return fmt.Sprintf("The latest invoice is **%s** for **%s**, totalling %s.", inv.InvoiceNumber, name, formatINR(inv.TotalAmount))

	case domain.IntentInvoiceDetails:
		if len(invoices) == 1 {
			inv := invoices[0]
			return fmt.Sprintf("Invoice **%s** for **%s**: total %s, status %s.", inv.InvoiceNumber, name, formatINR(inv.TotalAmount), inv.Status)
		}
	}

	return fmt.Sprintf("I found %d invoice(s) matching your question.", len(invoices))
}
