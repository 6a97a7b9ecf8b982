package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(pool *KeyPool) RetryOptions {
	return RetryOptions{
		Attempts:  3,
		BaseDelay: time.Millisecond,
		MaxDelay:  2 * time.Millisecond,
		Pool:      pool,
	}
}

func TestRetrySucceedsOnNthAttemptAndRotatesKeys(t *testing.T) {
	for n := 1; n <= 3; n++ {
		pool, err := NewKeyPool([]string{"k1", "k2"})
		require.NoError(t, err)

		fake := &Fake{}
		for i := 0; i < n-1; i++ {
			fake.EnqueueErr(&TransientError{Err: errors.New("rate limit")})
		}
		fake.Enqueue("ok")

		client := Chain(fake, Retry(fastRetry(pool)))
		out, err := client.Complete(context.Background(), Request{})
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, "ok", out)
		assert.Equal(t, n, fake.CallCount())
		assert.Equal(t, (n-1)%pool.Size(), pool.Index(), "key index after %d attempts", n)
	}
}

func TestRetryExhaustsAfterExactlyThreeAttempts(t *testing.T) {
	pool, err := NewKeyPool([]string{"k1"})
	require.NoError(t, err)

	fake := &Fake{Handler: func(Request) (string, error) {
		return "", &TransientError{Err: errors.New("overloaded")}
	}}
	client := Chain(fake, Retry(fastRetry(pool)))

	_, err = client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, IsExhausted(err))
	assert.Equal(t, 3, fake.CallCount())

	var ee *ExhaustedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Attempts)
	assert.True(t, IsTransient(ee.Last))
}

func TestRetryStopsOnFatalError(t *testing.T) {
	fake := &Fake{}
	fake.EnqueueErr(&FatalError{Err: errors.New("invalid request")})

	client := Chain(fake, Retry(fastRetry(nil)))
	_, err := client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.False(t, IsExhausted(err))
	assert.Equal(t, 1, fake.CallCount())
}

func TestRetryUnclassifiedErrorsAreRetried(t *testing.T) {
	fake := &Fake{}
	fake.EnqueueErr(errors.New("something odd"))
	fake.Enqueue("ok")

	client := Chain(fake, Retry(fastRetry(nil)))
	out, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, fake.CallCount())
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &Fake{Handler: func(Request) (string, error) {
		cancel()
		return "", &TransientError{Err: errors.New("rate limit")}
	}}

	client := Chain(fake, Retry(fastRetry(nil)))
	_, err := client.Complete(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.CallCount())
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("boom")
	assert.True(t, IsTransient(classifyStatus(429, base)))
	assert.True(t, IsTransient(classifyStatus(408, base)))
	assert.True(t, IsTransient(classifyStatus(500, base)))
	assert.True(t, IsTransient(classifyStatus(503, base)))
	assert.True(t, IsFatal(classifyStatus(400, base)))
	assert.True(t, IsFatal(classifyStatus(401, base)))
	assert.True(t, IsFatal(classifyStatus(404, base)))
	assert.Nil(t, classifyStatus(0, base))
	assert.Nil(t, classifyStatus(302, base))
}

func TestClassifyMessageFragments(t *testing.T) {
	assert.True(t, IsTransient(classifyMessage(errors.New("Rate limit reached for gpt-4o"))))
	assert.True(t, IsTransient(classifyMessage(errors.New("insufficient quota"))))
	assert.True(t, IsTransient(classifyMessage(errors.New("server is overloaded, try again"))))
	unknown := classifyMessage(errors.New("no such model"))
	assert.False(t, IsTransient(unknown))
	assert.False(t, IsFatal(unknown))
}
