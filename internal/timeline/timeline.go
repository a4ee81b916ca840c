// Package timeline turns raw intraday tick strings into a cleaned series:
// unparsable ticks dropped, duplicate timestamps collapsed keeping the last
// one seen, sorted ascending and limited to continuous trading hours.
package timeline

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"stockquote/internal/quote"
)

// Point is one intraday observation.
type Point struct {
	Time     time.Time `json:"time"`
	Price    float64   `json:"price"`
	AvgPrice float64   `json:"avgPrice"`
	Volume   float64   `json:"volume"`
	Amount   float64   `json:"amount"`
	PreClose float64   `json:"preClose"`
}

// Timeline is one trading day of points, ascending, unique by time.
type Timeline struct {
	Code     string  `json:"code"`
	PreClose float64 `json:"preClose"`
	Points   []Point `json:"points"`
}

// Empty reports that there is nothing to draw.
func (t Timeline) Empty() bool { return len(t.Points) == 0 }

// Prices returns the price column.
func (t Timeline) Prices() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Price
	}
	return out
}

// VolumeChangeRate compares the last point's volume with the mean of the
// n-1 points before it, in percent rounded to 2 decimals. It is 0 when there
// are fewer than n points or the base is 0.
func (t Timeline) VolumeChangeRate(n int) float64 {
	if n < 2 || len(t.Points) < n {
		return 0
	}
	recent := t.Points[len(t.Points)-n:]
	var sum float64
	for _, p := range recent[:n-1] {
		sum += p.Volume
	}
	base := sum / float64(n-1)
	if base == 0 {
		return 0
	}
	return quote.Round2((recent[n-1].Volume - base) / base * 100)
}

// tick field positions
const (
	idxTime   = 0
	idxPrice  = 1
	idxAvg    = 2
	idxVolume = 5
	idxAmount = 6
	minFields = 7
)

var (
	dateTimeLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}
	clockLayouts    = []string{"15:04", "15:04:05"}
)

// Builder parses ticks. Bare clock times are placed on the current date in
// the builder's location.
type Builder struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the exchange time zone.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) { b.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder defaults to Asia/Shanghai, falling back to a fixed UTC+8 zone
// when the tz database is unavailable.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{now: time.Now}
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		b.loc = loc
	} else {
		b.loc = time.FixedZone("CST", 8*60*60)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build cleans ticks into a Timeline.
func (b *Builder) Build(code string, ticks []string, preClose float64) Timeline {
	parsed := make([]Point, 0, len(ticks))
	for _, raw := range ticks {
		p, ok := b.parse(raw)
		if !ok {
			continue
		}
		p.PreClose = preClose
		parsed = append(parsed, p)
	}

	points := make([]Point, 0, len(parsed))
	for _, p := range dedupeKeepLast(parsed) {
		if InSession(p.Time) {
			points = append(points, p)
		}
	}
	return Timeline{Code: code, PreClose: preClose, Points: points}
}

// FromPayload reads a trends payload: "trends" ticks and "preclose", falling
// back to "f46" when preclose is missing or zero.
func (b *Builder) FromPayload(code string, data map[string]any) Timeline {
	preClose := quote.Field(data, "preclose")
	if preClose == 0 {
		preClose = quote.Field(data, "f46")
	}
	var ticks []string
	if raw, ok := data["trends"].([]any); ok {
		ticks = make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				ticks = append(ticks, s)
			}
		}
	}
	return b.Build(code, ticks, preClose)
}

func (b *Builder) parse(raw string) (Point, bool) {
	fields := strings.Split(raw, ",")
	if len(fields) < minFields {
		return Point{}, false
	}
	ts, ok := b.parseTime(strings.TrimSpace(fields[idxTime]))
	if !ok {
		return Point{}, false
	}
	var nums [minFields]float64
	for _, i := range []int{idxPrice, idxAvg, idxVolume, idxAmount} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Point{}, false
		}
		nums[i] = v
	}
	return Point{
		Time:     ts,
		Price:    nums[idxPrice],
		AvgPrice: nums[idxAvg],
		Volume:   nums[idxVolume],
		Amount:   nums[idxAmount],
	}, true
}

func (b *Builder) parseTime(s string) (time.Time, bool) {
	if strings.Contains(s, "-") {
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, s); err == nil {
			y, m, d := b.now().In(b.loc).Date()
			return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, b.loc), true
		}
	}
	return time.Time{}, false
}

// dedupeKeepLast collapses points by timestamp; for equal timestamps the later
// input wins. The result is sorted ascending.
func dedupeKeepLast(points []Point) []Point {
	latest := make(map[int64]int, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		key := p.Time.UnixNano()
		if i, ok := latest[key]; ok {
			out[i] = p
			continue
		}
		latest[key] = len(out)
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b Point) int { return a.Time.Compare(b.Time) })
	return out
}

// InSession reports whether t falls in continuous trading: 09:30-11:30 and
// 13:00-15:59. The 11:30 tick is the morning close and is kept.
func InSession(t time.Time) bool {
	switch h := t.Hour(); h {
	case 9:
		return t.Minute() >= 30
	case 11:
		return t.Minute() < 30 || (t.Minute() == 30 && t.Second() == 0)
	case 10, 13, 14:
		return true
	case 15:
		return t.Minute() <= 59
	}
	return false
}
