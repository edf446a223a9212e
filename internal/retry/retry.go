// Package retry wraps collaborator calls that may fail with transient errors.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// DefaultMaxRetries is the number of additional attempts after the first one
const DefaultMaxRetries = 3

// Policy describes how a class of operations is retried
type Policy struct {
	Name       string
	MaxRetries int
	NewBackOff func() backoff.BackOff
	Classify   func(error) bool
	Log        zerolog.Logger
}

// DataAccess retries transient database failures at a fixed 5s interval.
func DataAccess(log zerolog.Logger) Policy {
	return Policy{
		Name:       "data_access",
		MaxRetries: DefaultMaxRetries,
		NewBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(5 * time.Second) },
		Classify:   IsTransientDB,
		Log:        log.With().Str("component", "retry").Str("policy", "data_access").Logger(),
	}
}

// Transport retries transient network and SMTP failures with 2s, 4s, 8s waits.
func Transport(log zerolog.Logger) Policy {
	return Policy{
		Name:       "transport",
		MaxRetries: DefaultMaxRetries,
		NewBackOff: func() backoff.BackOff {
			return &backoff.ExponentialBackOff{
				InitialInterval:     2 * time.Second,
				RandomizationFactor: 0,
				Multiplier:          2,
				MaxInterval:         time.Minute,
			}
		},
		Classify: IsTransientTransport,
		Log:      log.With().Str("component", "retry").Str("policy", "transport").Logger(),
	}
}

// Do runs op, retrying classified failures. The last error is returned as is.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	classify := p.Classify
	if classify == nil {
		classify = IsTransientDB
	}
	b := backoff.BackOff(&backoff.ZeroBackOff{})
	if p.NewBackOff != nil {
		b = p.NewBackOff()
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !classify(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			p.Log.Warn().
				Err(err).
				Str("operation", p.Name).
				Int("attempt", attempt).
				Int("max_retries", p.MaxRetries).
				Dur("wait", wait).
				Msg("Transient failure, retrying")
		}),
	)
}

// Run is Do for operations without a result.
func (p Policy) Run(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Named returns a copy of the policy labelled for one operation.
func (p Policy) Named(name string) Policy {
	p.Name = name
	return p
}
