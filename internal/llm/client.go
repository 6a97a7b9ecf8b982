// Package llm abstracts the text-generation providers behind a single
// completion interface with middleware for retries and rate limiting.
package llm

import "context"

// Message roles follow the chat-completion convention shared by both
// providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string
	Content string
}

// Request describes a single logical "ask the model" operation.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider for machine-parseable output. Providers
	// that support a native JSON response format enable it; the reply is
	// still salvaged through Decode either way.
	JSONMode bool
}

// Client is the text-generation boundary. Implementations classify their
// failures as TransientError or FatalError so the retry middleware can
// decide; unclassified errors are retried.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Middleware wraps a Client with an orthogonal concern.
type Middleware func(Client) Client

// Chain applies middlewares so the first listed is the outermost.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
