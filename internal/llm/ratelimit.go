package llm

import (
	"context"
	"time"
)

// rpsLimiter is a token bucket: Acquire takes a token or blocks until the
// refill goroutine adds one.
type rpsLimiter struct {
	tokens chan struct{}
	stop   chan struct{}
}

func newRPSLimiter(rps, burst int) *rpsLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}
	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stop:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}
	go l.refill(time.Second / time.Duration(rps))
	return l
}

func (l *rpsLimiter) refill(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			select {
			case l.tokens <- struct{}{}:
			default:
			}
		}
	}
}

func (l *rpsLimiter) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.tokens:
		return nil
	}
}

func (l *rpsLimiter) Close() { close(l.stop) }

// RateLimit caps outbound completion calls at rps with a burst allowance.
// Zero rps disables the limiter.
func RateLimit(rps, burst int) Middleware {
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		return &limitedClient{next: next, limiter: newRPSLimiter(rps, burst)}
	}
}

type limitedClient struct {
	next    Client
	limiter *rpsLimiter
}

func (c *limitedClient) Name() string { return c.next.Name() }

func (c *limitedClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, req)
}
