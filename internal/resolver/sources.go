package resolver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stockquote/internal/market"
	"stockquote/internal/metrics"
	"stockquote/internal/quote"
)

// PayloadFunc fetches a raw quote payload.
type PayloadFunc func(ctx context.Context, sec market.Security) (map[string]any, error)

// Source is one named payload fetcher.
type Source struct {
	Name string
	Fn   PayloadFunc
}

// StockSource is the generic quote feed.
type StockSource interface {
	StockPush2(ctx context.Context, sec market.Security) (map[string]any, error)
	StockPush2His(ctx context.Context, sec market.Security) (map[string]any, error)
}

// QuoteSources picks the first payload whose price field is positive.
type QuoteSources struct {
	name       string
	priceField string
	order      func(market.Segment) []Source
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewStockSources orders push2 first for Shanghai and Shenzhen and push2his
// first for Hong Kong.
func NewStockSources(src StockSource, log *zap.Logger, m *metrics.Metrics) *QuoteSources {
	push2 := Source{Name: "push2", Fn: src.StockPush2}
	push2his := Source{Name: "push2his", Fn: src.StockPush2His}
	return newQuoteSources("stock", quote.StockFields.Price, log, m, func(seg market.Segment) []Source {
		if seg == market.HK {
			return []Source{push2his, push2}
		}
		return []Source{push2, push2his}
	})
}

// NewSources uses the same ordered sources for every segment.
func NewSources(name, priceField string, log *zap.Logger, m *metrics.Metrics, sources ...Source) *QuoteSources {
	return newQuoteSources(name, priceField, log, m, func(market.Segment) []Source { return sources })
}

func newQuoteSources(name, priceField string, log *zap.Logger, m *metrics.Metrics, order func(market.Segment) []Source) *QuoteSources {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteSources{name: name, priceField: priceField, order: order, log: log, metrics: m}
}

// Resolve returns the winning payload and source name. When nothing wins the
// error wraps ErrExhausted and the last failure.
func (q *QuoteSources) Resolve(ctx context.Context, sec market.Security) (map[string]any, string, error) {
	var last error
	for _, s := range q.order(sec.Segment) {
		payload, err := fetch(ctx, s.Fn, sec)
		if err != nil {
			last = err
			q.metrics.ResolverStep(q.name, s.Name, "error")
			q.log.Debug("source failed", zap.String("chain", q.name), zap.String("source", s.Name),
				zap.String("code", sec.Code), zap.Error(err))
			continue
		}
		if quote.Field(payload, q.priceField) > 0 {
			q.metrics.ResolverStep(q.name, s.Name, "hit")
			return payload, s.Name, nil
		}
		last = fmt.Errorf("%s: %w", s.Name, quote.ErrNoPrice)
		q.metrics.ResolverStep(q.name, s.Name, "miss")
		q.log.Debug("source has no price", zap.String("chain", q.name), zap.String("source", s.Name),
			zap.String("code", sec.Code))
	}
	if last == nil {
		return nil, "", ErrExhausted
	}
	return nil, "", fmt.Errorf("%w: %w", ErrExhausted, last)
}

func fetch(ctx context.Context, fn PayloadFunc, sec market.Security) (payload map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, sec)
}
