package output

import "context"

type LLMPort interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Prompt      string
	Temperature float32
	Stop        []string
}

// LLMFactory builds a client bound to the caller's credential.
type LLMFactory func(apiKey string) (LLMPort, error)
