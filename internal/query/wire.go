package query

import (
	"time"

	"go.uber.org/zap"

	"stockquote/internal/chart"
	"stockquote/internal/config"
	"stockquote/internal/endpoint"
	"stockquote/internal/metrics"
	"stockquote/internal/provider/eastmoney"
	"stockquote/internal/provider/fundgz"
	"stockquote/internal/quote"
	"stockquote/internal/ratelimit"
	"stockquote/internal/resolver"
	"stockquote/internal/timeline"
)

// FromConfig wires the full pipeline from cfg. m may be nil.
func FromConfig(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []endpoint.Option{endpoint.WithLogger(log.Named("endpoint")), endpoint.WithMetrics(m)}
	if tb := ratelimit.PerMinute(cfg.HTTP.MaxRequestsPerMinute, cfg.HTTP.Burst); tb != nil {
		opts = append(opts, endpoint.WithLimiter(tb))
	}
	client := endpoint.New(endpoint.Config{
		Timeout:   time.Duration(cfg.HTTP.TimeoutSec) * time.Second,
		UserAgent: cfg.HTTP.UserAgent,
		Headers:   cfg.HTTP.Headers,
	}, opts...)

	em := eastmoney.New(client, eastmoney.Hosts{
		Push2:    cfg.Endpoints.Push2,
		Push2His: cfg.Endpoints.Push2His,
		FundPage: cfg.Endpoints.FundPage,
		UT:       cfg.Endpoints.UT,
	})
	gz := fundgz.New(client, cfg.Endpoints.FundGZ)

	loc := location(cfg.Chart.Location, log)
	rlog := log.Named("resolver")
	return New(Deps{
		Stocks: resolver.NewStockSources(em, rlog, m),
		Funds: resolver.NewSources("fund", quote.FundFields.Price, rlog, m,
			resolver.Source{Name: "eastmoney-fund", Fn: em.FundQuote}),
		NAV:     resolver.NewNAVChain(gz, em, rlog, m),
		Trends:  em,
		Builder: timeline.NewBuilder(timeline.WithLocation(loc)),
		Renderer: chart.NewRenderer(chart.Config{
			Dir:      cfg.Chart.Dir,
			Filename: cfg.Chart.Filename,
			FontPath: cfg.Chart.FontPath,
			FontSize: cfg.Chart.FontSize,
			Location: loc,
		}, chart.WithLogger(log.Named("chart")), chart.WithMetrics(m)),
		Throttle: ratelimit.NewMinInterval(time.Duration(cfg.Scan.DelayMS) * time.Millisecond),
		Log:      log.Named("query"),
	})
}

func location(name string, log *zap.Logger) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("unknown time zone, using UTC+8", zap.String("location", name), zap.Error(err))
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}
