package llm

import "context"

// CompletionProvider is the black-box text-completion collaborator. It takes
// a single user-role prompt and returns one text completion. Output is
// unreliable by contract: prose, malformed JSON, or markdown-fenced JSON are
// all possible, so every caller keeps a fallback path.
type CompletionProvider interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if the provider has valid credentials
	IsConfigured() bool

	// Complete generates a single text completion for the prompt
	Complete(ctx context.Context, prompt string) (string, error)
}
