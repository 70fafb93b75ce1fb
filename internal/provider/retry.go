package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how long transient provider failures are retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy starts at 2 seconds and caps at 32 seconds.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 2 * time.Second,
	MaxInterval:     32 * time.Second,
}

// minimumBackOff enforces a server supplied Retry-After on the next wait.
type minimumBackOff struct {
	backoff.BackOff
	minimum time.Duration
}

func (b *minimumBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.minimum > next {
		next = b.minimum
	}
	b.minimum = 0
	return next
}

// WithRetry runs op until it succeeds, returns a non retryable error, the policy
// is exhausted, or ctx is done. Only *ProviderError values with Retry set are
// retried; RetryAfter is honoured as the minimum wait before the next attempt.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.MaxElapsedTime = 0

	b := &minimumBackOff{BackOff: backoff.WithMaxRetries(exp, policy.MaxRetries)}

	var result T
	err := backoff.Retry(func() error {
		value, err := op()
		if err == nil {
			result = value
			return nil
		}

		var perr *ProviderError
		if !errors.As(err, &perr) || !perr.Retry {
			return backoff.Permanent(err)
		}
		b.minimum = time.Duration(perr.RetryAfter) * time.Second
		return err
	}, backoff.WithContext(b, ctx))

	return result, err
}

// retrying wraps a Provider so its remote calls go through WithRetry.
type retrying struct {
	Provider
	policy RetryPolicy
}

// Retrying returns p with Search and Series retried under policy.
func Retrying(p Provider, policy RetryPolicy) Provider {
	return &retrying{Provider: p, policy: policy}
}

func (r *retrying) Search(ctx context.Context, request SearchRequest) ([]Candidate, error) {
	return WithRetry(ctx, r.policy, func() ([]Candidate, error) {
		return r.Provider.Search(ctx, request)
	})
}

func (r *retrying) Series(ctx context.Context, request SeriesRequest) (*Show, error) {
	return WithRetry(ctx, r.policy, func() (*Show, error) {
		return r.Provider.Series(ctx, request)
	})
}
