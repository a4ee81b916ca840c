package resolver

import (
	"context"

	"go.uber.org/zap"

	"stockquote/internal/metrics"
	"stockquote/internal/provider/fundgz"
)

// Estimator is the dedicated real-time estimate feed.
//
//go:generate mockgen -package=resolver_test -destination=mock_nav_test.go -source=nav.go Estimator NAVSource
type Estimator interface {
	Estimate(ctx context.Context, code string) (fundgz.Estimate, error)
}

// NAVSource is the generic quote feed plus the fund pages.
type NAVSource interface {
	EstimateNAV(ctx context.Context, code string) (float64, error)
	PageEstimate(ctx context.Context, code string) (float64, error)
	HistoryNAV(ctx context.Context, code string) (float64, error)
}

// Strategy names of the NAV chain, in order.
const (
	StrategyFundGZ     = "fundgz"
	StrategyF71        = "eastmoney-f71"
	StrategyDetailPage = "detail-page"
	StrategyHistoryNAV = "history-nav"
)

// NewNAVChain resolves a fund NAV: dedicated estimate, generic-feed
// estimate, detail-page scrape, last published NAV.
func NewNAVChain(est Estimator, src NAVSource, log *zap.Logger, m *metrics.Metrics) *Chain {
	return NewChain("nav", log, m,
		Strategy{Name: StrategyFundGZ, Fn: func(ctx context.Context, code string) (float64, error) {
			e, err := est.Estimate(ctx, code)
			if err != nil {
				return 0, err
			}
			return e.Value, nil
		}},
		Strategy{Name: StrategyF71, Fn: src.EstimateNAV},
		Strategy{Name: StrategyDetailPage, Fn: src.PageEstimate},
		Strategy{Name: StrategyHistoryNAV, Fn: src.HistoryNAV},
	)
}
