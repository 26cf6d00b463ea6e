package domain

// Chat turn roles as sent by the frontend
const (
	ChatRoleUser = "user"
	ChatRoleAI   = "ai"
)

// Chat intents resolvable from an invoice question
const (
	IntentTotal          = "total"
	IntentTax            = "tax"
	IntentDiscount       = "discount"
	IntentDueDate        = "dueDate"
	IntentIssueDate      = "issueDate"
	IntentSubtotal       = "subtotal"
	IntentLatestInvoice  = "latest_invoice"
	IntentInvoiceDetails = "invoice_details"
)

// ChatTurn is one prior turn of the invoice chat conversation.
// AI turns may carry the result rows they answered with.
type ChatTurn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	Data []Invoice `json:"data,omitempty"`
}

// ChatRequest is an invoice chat message plus its conversation history
type ChatRequest struct {
	Message string     `json:"message" validate:"required,max=2000"`
	History []ChatTurn `json:"history"`
}

// ChatResponse is the synthesized answer plus the rows it was built from
type ChatResponse struct {
	Answer string    `json:"answer"`
	Data   []Invoice `json:"data"`
}
