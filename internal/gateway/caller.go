package gateway

import "context"

// Prompt is the opaque payload handed to a Caller. Images holds data URLs
// (data:image/...;base64,...) sent alongside the text as extra parts.
type Prompt struct {
	Text   string
	Images []string
}

// TextPrompt builds a text-only Prompt.
func TextPrompt(text string) Prompt {
	return Prompt{Text: text}
}

// Caller performs a single call to the generative service.
//
// Contract:
//   - Concurrency: must be safe for concurrent use.
//   - Context: should return promptly once ctx is done; the gateway abandons
//     the call at the attempt deadline either way.
//   - An empty or whitespace-only reply is not an error; the gateway treats it
//     as a retryable empty response.
type Caller interface {
	Call(ctx context.Context, prompt Prompt) (string, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f CallerFunc) Call(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}
