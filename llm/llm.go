package llm

import (
	"context"
)

// Request bundles inputs for a single non-streaming completion.
type Request struct {
	System      string
	User        string
	Temperature float64
}

// Client defines the interface for LLM providers.
type Client interface {
	// Complete generates a response for the given prompts.
	Complete(ctx context.Context, req *Request) (string, error)
}
