// Package llm wraps the hosted completion providers behind a single
// prompt-in, text-out interface.
package llm

import "context"

// Client produces one completion for one prompt. Implementations
// return an error on transport or provider failure; callers decide
// whether to retry, fall back, or surface it.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
