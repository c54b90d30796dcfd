// Package fallback orders data access across tiers of decreasing capability:
// the ORM, the REST endpoint with the service key, the REST endpoint with the
// anonymous key, and finally static mock data.
//
// Every call starts again at the ORM tier. There is no retry within a tier
// and no memory of earlier failures; moving to the next tier is the retry.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"marketplace-api/internal/apperror"
)

type Tier string

const (
	TierPrimary     Tier = "orm"
	TierServiceREST Tier = "service-rest"
	TierAnonREST    Tier = "anon-rest"
	TierMock        Tier = "mock"
)

// Source fetches or writes data through one tier.
type Source[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Tier Tier
}

// ReadPlan describes one logical read. Nil sources are skipped.
type ReadPlan[T any] struct {
	Resource    string
	Primary     Source[T]
	ServiceREST Source[T]
	AnonREST    Source[T]
	Mock        func() (T, error)
}

// WritePlan describes one logical write. Writes never use the anonymous key
// and never resolve to mock data.
type WritePlan[T any] struct {
	Resource    string
	Primary     Source[T]
	ServiceREST Source[T]
}

var ErrNoTier = errors.New("no tier available")

// FailedError is the terminal state of a write that exhausted the writable
// tiers, or of a read that had nowhere left to go.
type FailedError struct {
	Resource string
	Tier     Tier
	Err      error
}

func (e *FailedError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("%s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("%s failed at tier %s: %v", e.Resource, e.Tier, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

type Chain struct {
	logger      *slog.Logger
	tierTimeout time.Duration

	mu     sync.Mutex
	served map[Tier]int64
}

func NewChain(logger *slog.Logger, tierTimeout time.Duration) *Chain {
	return &Chain{
		logger:      logger,
		tierTimeout: tierTimeout,
		served:      make(map[Tier]int64),
	}
}

// ServedCounts reports how many calls each tier has answered.
func (c *Chain) ServedCounts() map[Tier]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[Tier]int64, len(c.served))
	for k, v := range c.served {
		out[k] = v
	}
	return out
}

func (c *Chain) record(resource string, tier Tier) {
	c.mu.Lock()
	c.served[tier]++
	c.mu.Unlock()

	if tier == TierMock {
		c.logger.Warn("read served from mock tier", "resource", resource, "tier", tier)
		return
	}
	c.logger.Debug("served", "resource", resource, "tier", tier)
}

type step[T any] struct {
	tier   Tier
	source Source[T]
}

// Read walks ORM → service REST → anon REST → mock and returns the first
// success tagged with its tier. Only malformed input or a definite not-found
// stops the walk early; every other failure advances.
func Read[T any](ctx context.Context, c *Chain, plan ReadPlan[T]) (Result[T], error) {
	steps := []step[T]{
		{TierPrimary, plan.Primary},
		{TierServiceREST, plan.ServiceREST},
		{TierAnonREST, plan.AnonREST},
	}

	for _, s := range steps {
		if s.source == nil {
			continue
		}
		if ctx.Err() != nil {
			c.logger.Warn("caller gave up, skipping remaining tiers", "resource", plan.Resource, "error", ctx.Err())
			break
		}

		data, err := attemptDetached(ctx, c.tierTimeout, s.source)
		if err == nil {
			c.record(plan.Resource, s.tier)
			return Result[T]{Data: data, Tier: s.tier}, nil
		}
		if stopsRead(err) {
			return Result[T]{}, err
		}

		c.logger.Warn("tier failed, falling back", "resource", plan.Resource, "tier", s.tier, "error", err)
	}

	if plan.Mock == nil {
		return Result[T]{}, &FailedError{Resource: plan.Resource, Err: ErrNoTier}
	}

	data, err := plan.Mock()
	if err != nil {
		return Result[T]{}, err
	}

	c.record(plan.Resource, TierMock)
	return Result[T]{Data: data, Tier: TierMock}, nil
}

// Write tries the ORM then the service-key REST tier. When both fail the
// caller gets a FailedError wrapping the last tier's error.
func Write[T any](ctx context.Context, c *Chain, plan WritePlan[T]) (Result[T], error) {
	steps := []step[T]{
		{TierPrimary, plan.Primary},
		{TierServiceREST, plan.ServiceREST},
	}

	var (
		lastErr  error
		lastTier Tier
	)

	for _, s := range steps {
		if s.source == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		data, err := attempt(ctx, c.tierTimeout, s.source)
		if err == nil {
			c.record(plan.Resource, s.tier)
			return Result[T]{Data: data, Tier: s.tier}, nil
		}

		lastErr, lastTier = err, s.tier
		if stopsWrite(err) {
			break
		}

		c.logger.Warn("write tier failed, falling back", "resource", plan.Resource, "tier", s.tier, "error", err)
	}

	if lastErr == nil {
		lastErr = ErrNoTier
	}

	c.logger.Error("write failed", "resource", plan.Resource, "tier", lastTier, "error", lastErr)
	return Result[T]{}, &FailedError{Resource: plan.Resource, Tier: lastTier, Err: lastErr}
}

func attempt[T any](ctx context.Context, timeout time.Duration, src Source[T]) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return src(ctx)
}

type outcome[T any] struct {
	data T
	err  error
}

// attemptDetached stops waiting when the tier deadline passes, even if the
// source ignores its context. Reads only: an abandoned write could still land.
func attemptDetached[T any](ctx context.Context, timeout time.Duration, src Source[T]) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- outcome[T]{data: zero, err: fmt.Errorf("tier panicked: %v", r)}
			}
		}()
		data, err := src(ctx)
		done <- outcome[T]{data: data, err: err}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func stopsRead(err error) bool {
	return apperror.IsValidation(err) || errors.Is(err, apperror.ErrNotFound)
}

func stopsWrite(err error) bool {
	if stopsRead(err) || errors.Is(err, apperror.ErrReadOnly) {
		return true
	}

	var rest *apperror.RestError
	return errors.As(err, &rest) && rest.IsInputRejection()
}
