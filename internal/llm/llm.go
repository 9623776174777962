// Package llm defines the opaque chat-completion interface the analyser
// drives, grounded on original_source/news_analyser/providers.py's
// LLMProvider abstraction.
package llm

import "context"

// ChatCompletion sends a system/user prompt pair to a language model and
// returns the raw text response.
type ChatCompletion interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
