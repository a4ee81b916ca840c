// Package query runs the quote pipeline for one code or a batch: classify,
// resolve, normalize and optionally chart. Every failure ends up as an error
// record; nothing escapes as a panic.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stockquote/internal/market"
	"stockquote/internal/quote"
	"stockquote/internal/ratelimit"
	"stockquote/internal/timeline"
)

// ErrInvalidCode is returned for input that is not a digit string.
var ErrInvalidCode = errors.New("security code must be digits only")

// PayloadResolver picks the first usable quote payload.
type PayloadResolver interface {
	Resolve(ctx context.Context, sec market.Security) (map[string]any, string, error)
}

// NAVResolver resolves a fund NAV.
type NAVResolver interface {
	Resolve(ctx context.Context, code string) (float64, string)
}

// TrendSource fetches raw intraday ticks.
type TrendSource interface {
	Trends(ctx context.Context, sec market.Security) (map[string]any, error)
}

// Renderer draws charts.
type Renderer interface {
	Intraday(q quote.Quote, tl timeline.Timeline) (string, error)
	Timeline(code string, tl timeline.Timeline, dir string) (string, error)
}

// Deps are the collaborators of a Service. Renderer and Throttle may be nil.
type Deps struct {
	Stocks   PayloadResolver
	Funds    PayloadResolver
	NAV      NAVResolver
	Trends   TrendSource
	Builder  *timeline.Builder
	Renderer Renderer
	// Throttle spaces consecutive lookups of a batch.
	Throttle ratelimit.Limiter
	Log      *zap.Logger
}

// Options select the optional outputs of a query.
type Options struct {
	// Chart renders the primary intraday chart.
	Chart bool
	// TimelineDir, when set, renders the secondary chart into it.
	TimelineDir string
}

// Service is safe for concurrent use when its dependencies are.
type Service struct {
	d Deps
}

// New creates a service.
func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Builder == nil {
		d.Builder = timeline.NewBuilder()
	}
	return &Service{d: d}
}

// QueryAll runs Query for each code in order, waiting on the throttle
// between lookups. Results keep the input order.
func (s *Service) QueryAll(ctx context.Context, codes []string, opts Options) []quote.Result {
	out := make([]quote.Result, 0, len(codes))
	for _, code := range codes {
		if s.d.Throttle != nil {
			if err := s.d.Throttle.Wait(ctx); err != nil {
				out = append(out, quote.Failed(code, err))
				continue
			}
		}
		out = append(out, s.Query(ctx, code, opts))
	}
	return out
}

// NAVAll runs NAV for each code in order with the same throttle as QueryAll.
func (s *Service) NAVAll(ctx context.Context, codes []string) []quote.Result {
	out := make([]quote.Result, 0, len(codes))
	for _, code := range codes {
		if s.d.Throttle != nil {
			if err := s.d.Throttle.Wait(ctx); err != nil {
				out = append(out, quote.Failed(code, err))
				continue
			}
		}
		out = append(out, s.NAV(ctx, code))
	}
	return out
}

// Query resolves one code.
func (s *Service) Query(ctx context.Context, code string, opts Options) (res quote.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.d.Log.Error("query panic", zap.String("code", code), zap.Any("panic", r))
			res = quote.Failed(code, fmt.Errorf("internal error: %v", r))
		}
	}()

	code = strings.TrimSpace(code)
	if !isDigits(code) {
		return quote.Failed(code, fmt.Errorf("%w: %q", ErrInvalidCode, code))
	}

	var (
		q   quote.Quote
		sec market.Security
		err error
	)
	if market.IsFund(code) {
		sec = market.Fund(code)
		q, err = s.fund(ctx, code)
	} else {
		sec, err = market.Classify(code)
		if err == nil {
			q, err = s.stock(ctx, sec)
		}
	}
	if err != nil {
		s.d.Log.Info("query failed", zap.String("code", code), zap.Error(err))
		return quote.Failed(code, err)
	}

	res = quote.OK(q)
	if opts.Chart || opts.TimelineDir != "" {
		s.attachCharts(ctx, &res, sec, opts)
	}
	return res
}

// NAV resolves only the fund NAV; the result's price is the NAV itself.
func (s *Service) NAV(ctx context.Context, code string) quote.Result {
	code = strings.TrimSpace(code)
	if !isDigits(code) {
		return quote.Failed(code, fmt.Errorf("%w: %q", ErrInvalidCode, code))
	}
	nav, source := s.d.NAV.Resolve(ctx, code)
	if nav <= 0 {
		return quote.Failed(code, fmt.Errorf("%s: no NAV estimate: %w", code, quote.ErrNoPrice))
	}
	return quote.OK(quote.Quote{
		Code:      code,
		Kind:      quote.Fund,
		Price:     nav,
		NAV:       nav,
		NAVSource: source,
		Currency:  market.FundSegment(code).Currency(),
		Source:    source,
	})
}

// Timeline fetches and cleans the intraday series for code.
func (s *Service) Timeline(ctx context.Context, code string) (timeline.Timeline, error) {
	code = strings.TrimSpace(code)
	if !isDigits(code) {
		return timeline.Timeline{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	sec := market.Fund(code)
	if !market.IsFund(code) {
		var err error
		if sec, err = market.Classify(code); err != nil {
			return timeline.Timeline{}, err
		}
	}
	return s.timeline(ctx, sec)
}

func (s *Service) stock(ctx context.Context, sec market.Security) (quote.Quote, error) {
	payload, source, err := s.d.Stocks.Resolve(ctx, sec)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: %w", sec.Code, err)
	}
	return quote.NormalizeStock(sec, payload, source)
}

func (s *Service) fund(ctx context.Context, code string) (quote.Quote, error) {
	payload, _, err := s.d.Funds.Resolve(ctx, market.Fund(code))
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%s: %w", code, err)
	}
	nav, source := s.d.NAV.Resolve(ctx, code)
	return quote.NormalizeFund(code, payload, nav, source)
}

func (s *Service) timeline(ctx context.Context, sec market.Security) (timeline.Timeline, error) {
	data, err := s.d.Trends.Trends(ctx, sec)
	if err != nil {
		return timeline.Timeline{}, fmt.Errorf("%s: trends: %w", sec.Code, err)
	}
	return s.d.Builder.FromPayload(sec.Code, data), nil
}

func (s *Service) attachCharts(ctx context.Context, res *quote.Result, sec market.Security, opts Options) {
	if s.d.Renderer == nil || s.d.Trends == nil {
		return
	}
	tl, err := s.timeline(ctx, sec)
	if err != nil {
		s.d.Log.Info("no timeline", zap.String("code", sec.Code), zap.Error(err))
		return
	}
	if tl.Empty() {
		s.d.Log.Info("no chart to draw", zap.String("code", sec.Code))
		return
	}
	if opts.Chart {
		if path, err := s.d.Renderer.Intraday(*res.Quote, tl); err == nil {
			res.Chart = path
		}
	}
	if opts.TimelineDir != "" {
		if path, err := s.d.Renderer.Timeline(sec.Code, tl, opts.TimelineDir); err == nil {
			res.TimelineChart = path
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
