package llm

import "context"

type Provider interface {
	// Complete returns the full text for a prompt in one response.
	Complete(ctx context.Context, prompt string) (string, error)
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}
