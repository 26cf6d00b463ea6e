package llm

import (
	"fmt"
	"strings"
)

// InvoiceChatPrompt constrains the completion to a JSON query-extraction
// object for the invoice chatbot.
func InvoiceChatPrompt(input string) string {
	return fmt.Sprintf(`You are an AI that converts user questions into MongoDB queries.

IMPORTANT RULES:
- Invoice statuses are ONLY: "pending", "paid", "overdue"
- "unpaid" ALWAYS means status IN ["pending", "overdue"]
- Customer name field is "customer.name"
- Discounts are stored at invoice level as "discount"
- Total invoice amount is stored as "totalAmount"
- Tax amount is stored as "taxAmount"
- NEVER invent fields
- Respond ONLY with valid JSON

Response format:
{
  "intent": "",
  "action": "find" | "aggregate",
  "query": {},
  "pipeline": [],
  "reasoning": ""
}

User input:
"%s"
`, input)
}

// InvoiceExtractionPrompt constrains the completion to invoice data
// extraction from free text. Totals are never extracted; the ledger
// computes them.
func InvoiceExtractionPrompt(input string) string {
	return fmt.Sprintf(`You are an AI assistant that extracts invoice data.

Rules:
- Respond ONLY with valid JSON
- No explanation
- Quantity default = 1
- GST default = 18%%
- Do NOT calculate totals
- Dates must be ISO format

Output format:
{
  "customer": {
    "name": "",
    "company": "",
    "email": ""
  },
  "items": [
    {
      "name": "",
      "quantity": 1,
      "price": 0
    }
  ],
  "taxPercent": 18,
  "discount": 0,
  "issueDate": "",
  "dueDate": ""
}

User input:
"%s"
`, input)
}

// TaskAnalysisPrompt asks for a priority/effort estimate as strict JSON.
func TaskAnalysisPrompt(title, description string) string {
	if description == "" {
		description = "N/A"
	}
	return fmt.Sprintf(`You are a task management assistant.
Given a task, return a COMPLETE JSON ONLY, do not add extra text or markdown.
Fields required: "suggestedPriority" (low, medium, high), "estimatedTime" (number + unit), "note" (short reason).

TASK:
Title: %s
Description: %s
`, title, description)
}

// EmailPrompt asks for a full HTML business email body.
func EmailPrompt(subject, context, tone, senderName string) string {
	return fmt.Sprintf(`You are a professional email writer.

Generate a proper business email with:
- Greeting
- Clear paragraphs
- Polite closing
- Signature

Rules:
- DO NOT repeat the subject inside the body
- DO NOT write "Subject:" in the body
- Output ONLY HTML email body (no markdown)

Subject:
%s

Context:
%s

Tone:
%s

Sender Name:
%s
`, subject, context, tone, senderName)
}

// ExtractJSON pulls a JSON object out of a completion that may wrap it in
// markdown fences or surround it with prose. Returns "" when no object-like
// span exists; callers treat that as a parse failure and fall back.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Strip markdown code fences
	if idx := strings.Index(content, "```"); idx != -1 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "\n")
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		content = strings.TrimSpace(rest)
	}

	// Narrow to the outermost object
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}
