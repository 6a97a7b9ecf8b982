package llm

import (
	"errors"
	"fmt"
	"strings"
)

// TransientError marks a failure worth retrying: rate limits, quota
// exhaustion, provider overload, flaky transport.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a failure retrying cannot fix, such as a rejected request
// or bad credentials for the whole pool.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// ExhaustedError reports that the retry budget was consumed without a
// successful completion.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// classifyStatus decides from a structured provider status code. Zero means
// the code carries no signal and the message fallback applies.
func classifyStatus(code int, err error) error {
	switch {
	case code == 429 || code == 408 || code >= 500:
		return &TransientError{Err: err}
	case code == 400 || code == 401 || code == 403 || code == 404:
		return &FatalError{Err: err}
	}
	return nil
}

var transientFragments = []string{
	"rate limit",
	"rate_limit",
	"quota",
	"overloaded",
	"capacity",
	"timeout",
	"deadline exceeded",
	"connection reset",
	"temporarily unavailable",
	"try again",
}

// classifyMessage is the fallback for errors without a structured code.
// Recognized fragments are wrapped as transient; anything else passes
// through unclassified, which the retry middleware still retries. Only a
// structured client error is fatal.
func classifyMessage(err error) error {
	msg := strings.ToLower(err.Error())
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return &TransientError{Err: err}
		}
	}
	return err
}
