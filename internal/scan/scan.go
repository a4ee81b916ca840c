// Package scan runs a watch list through the quote pipeline and ranks the
// results by market value and by recent volume change.
package scan

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"go.uber.org/zap"

	"stockquote/internal/query"
	"stockquote/internal/quote"
	"stockquote/internal/ratelimit"
	"stockquote/internal/timeline"
)

// VolumeWindow is the number of trailing timeline points compared by the
// volume change rate: the last one against the mean of the rest.
const VolumeWindow = 6

// TopN is the size of each ranked section.
const TopN = 5

// Querier is the part of query.Service a scan needs.
type Querier interface {
	Query(ctx context.Context, code string, opts query.Options) quote.Result
	Timeline(ctx context.Context, code string) (timeline.Timeline, error)
}

// Row is one scanned security.
type Row struct {
	Quote            quote.Quote `json:"quote"`
	VolumeChangeRate float64     `json:"volumeChangeRate"`
}

// Report holds the rows sorted by market value ascending, plus the codes
// that failed.
type Report struct {
	Generated time.Time      `json:"generated"`
	Rows      []Row          `json:"rows"`
	Failed    []quote.Result `json:"failed,omitempty"`
}

// Scanner is not safe for concurrent Run calls sharing one throttle.
type Scanner struct {
	q        Querier
	throttle ratelimit.Limiter
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock replaces time.Now for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a scanner. throttle and log may be nil.
func New(q Querier, throttle ratelimit.Limiter, log *zap.Logger, opts ...Option) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scanner{q: q, throttle: throttle, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run queries every code in order, waiting on the throttle before each one.
// A code whose timeline cannot be fetched still gets a row with a zero
// volume change rate.
func (s *Scanner) Run(ctx context.Context, codes []string) Report {
	r := Report{Generated: s.now()}
	for _, code := range codes {
		if s.throttle != nil {
			if err := s.throttle.Wait(ctx); err != nil {
				r.Failed = append(r.Failed, quote.Failed(code, err))
				continue
			}
		}
		res := s.q.Query(ctx, code, query.Options{})
		if res.Quote == nil {
			s.log.Info("scan skipped code", zap.String("code", code), zap.String("reason", res.Error))
			r.Failed = append(r.Failed, res)
			continue
		}
		row := Row{Quote: *res.Quote}
		if tl, err := s.q.Timeline(ctx, code); err != nil {
			s.log.Debug("no timeline for volume change", zap.String("code", code), zap.Error(err))
		} else {
			row.VolumeChangeRate = tl.VolumeChangeRate(VolumeWindow)
		}
		r.Rows = append(r.Rows, row)
	}
	slices.SortStableFunc(r.Rows, func(a, b Row) int {
		switch {
		case a.Quote.MarketValue < b.Quote.MarketValue:
			return -1
		case a.Quote.MarketValue > b.Quote.MarketValue:
			return 1
		}
		return 0
	})
	return r
}

// Smallest returns the n rows with the lowest market value, ascending.
func (r Report) Smallest(n int) []Row {
	return r.Rows[:min(n, len(r.Rows))]
}

// Largest returns the n rows with the highest market value, ascending.
func (r Report) Largest(n int) []Row {
	return r.Rows[len(r.Rows)-min(n, len(r.Rows)):]
}

// TopVolumeChange returns the n rows with the highest volume change rate,
// descending.
func (r Report) TopVolumeChange(n int) []Row {
	rows := slices.Clone(r.Rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		switch {
		case a.VolumeChangeRate > b.VolumeChangeRate:
			return -1
		case a.VolumeChangeRate < b.VolumeChangeRate:
			return 1
		}
		return 0
	})
	return rows[:min(n, len(rows))]
}

// Print writes the human-readable report. With fewer than TopN rows every
// row is listed once instead of the ranked sections.
func (r Report) Print(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("=== Watch list report ===\n")
	ew.printf("Generated: %s\n", r.Generated.Format(time.DateTime))
	ew.printf("Securities: %d\n", len(r.Rows))
	if len(r.Rows) == 0 {
		ew.printf("\nNo quotes received\n")
	}
	if len(r.Rows) >= TopN {
		ew.section("Smallest market value", r.Smallest(TopN))
		ew.section("Largest market value", r.Largest(TopN))
		ew.section("Largest volume change", r.TopVolumeChange(TopN))
	} else if len(r.Rows) > 0 {
		ew.section("All securities", r.Rows)
	}
	for _, f := range r.Failed {
		ew.printf("\nFailed %s: %s\n", f.Code, f.Error)
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) section(title string, rows []Row) {
	e.printf("\n--- %s ---\n", title)
	for _, row := range rows {
		q := row.Quote
		e.printf("\n%s (%s)\n", q.Code, q.Name)
		e.printf("Price: %.2f %s\n", q.Price, q.Currency)
		e.printf("Change: %.2f%%\n", q.ChangePercent)
		e.printf("Market value: %.2f x100M %s\n", q.MarketValue, q.Currency)
		e.printf("Volume change (last %d points): %.2f%%\n", VolumeWindow, row.VolumeChangeRate)
	}
}
