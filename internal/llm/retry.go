package llm

import (
	"context"
	"math/rand"
	"time"
)

// RetryOptions bound a single logical completion.
type RetryOptions struct {
	// Attempts is the total call budget, first try included. Zero means
	// the default of 3.
	Attempts int
	// BaseDelay seeds the exponential backoff. Zero means 500ms.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff sleep. Zero means 8s.
	MaxDelay time.Duration
	// Pool, when set, is advanced to the next credential once before every
	// reattempt so retries land on a different key.
	Pool *KeyPool
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 8 * time.Second
	}
	return o
}

// Retry wraps a client with bounded retries, exponential backoff with
// jitter, and credential rotation between attempts. Fatal errors short
// circuit; everything else is retried until the budget is spent, then
// surfaced as an ExhaustedError.
func Retry(opts RetryOptions) Middleware {
	opts = opts.withDefaults()
	return func(next Client) Client {
		return &retryClient{next: next, opts: opts}
	}
}

type retryClient struct {
	next Client
	opts RetryOptions
}

func (c *retryClient) Name() string { return c.next.Name() }

func (c *retryClient) Complete(ctx context.Context, req Request) (string, error) {
	var last error
	for attempt := 0; attempt < c.opts.Attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(c.opts, attempt)); err != nil {
				return "", err
			}
			if c.opts.Pool != nil {
				c.opts.Pool.Advance()
			}
		}
		out, err := c.next.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if IsFatal(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		last = err
	}
	return "", &ExhaustedError{Attempts: c.opts.Attempts, Last: last}
}

// backoff doubles per attempt with ±25% jitter: attempt 1 waits ~base,
// attempt 2 ~2*base, capped at MaxDelay.
func backoff(opts RetryOptions, attempt int) time.Duration {
	d := opts.BaseDelay << (attempt - 1)
	if d > opts.MaxDelay {
		d = opts.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2+1)) - d/4
	return d + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
