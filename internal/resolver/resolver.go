// Package resolver runs ordered fallback chains over unreliable sources.
// A chain stops at the first source that produces a usable value; errors
// from individual sources are logged and never stop the chain.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stockquote/internal/metrics"
)

// ErrExhausted is returned when no source produced a usable value.
var ErrExhausted = errors.New("all sources exhausted")

// Func produces a candidate value for code.
type Func func(ctx context.Context, code string) (float64, error)

// Strategy is one named step of a Chain.
type Strategy struct {
	Name string
	Fn   Func
}

// Chain tries strategies in order.
type Chain struct {
	name       string
	strategies []Strategy
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewChain builds a chain labeled name. log and m may be nil.
func NewChain(name string, log *zap.Logger, m *metrics.Metrics, strategies ...Strategy) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{name: name, strategies: strategies, log: log, metrics: m}
}

// Names lists the strategy names in order.
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		out = append(out, s.Name)
	}
	return out
}

// Resolve returns the first strictly positive value and the name of the
// strategy that produced it. Exhaustion returns (0, "").
func (c *Chain) Resolve(ctx context.Context, code string) (float64, string) {
	for _, s := range c.strategies {
		if ctx.Err() != nil {
			c.log.Debug("resolve canceled", zap.String("chain", c.name), zap.String("code", code))
			return 0, ""
		}
		v, err := call(ctx, s.Fn, code)
		switch {
		case err != nil:
			c.metrics.ResolverStep(c.name, s.Name, "error")
			c.log.Debug("strategy failed",
				zap.String("chain", c.name), zap.String("strategy", s.Name),
				zap.String("code", code), zap.Error(err))
		case v > 0:
			c.metrics.ResolverStep(c.name, s.Name, "hit")
			c.log.Debug("strategy hit",
				zap.String("chain", c.name), zap.String("strategy", s.Name),
				zap.String("code", code), zap.Float64("value", v))
			return v, s.Name
		default:
			c.metrics.ResolverStep(c.name, s.Name, "miss")
			c.log.Debug("strategy miss",
				zap.String("chain", c.name), zap.String("strategy", s.Name),
				zap.String("code", code), zap.Float64("value", v))
		}
	}
	c.log.Info("chain exhausted", zap.String("chain", c.name), zap.String("code", code))
	return 0, ""
}

func call(ctx context.Context, fn Func, code string) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, code)
}
