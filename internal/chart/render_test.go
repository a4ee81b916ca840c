package chart_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"stockquote/internal/chart"
	"stockquote/internal/metrics"
	"stockquote/internal/quote"
	"stockquote/internal/timeline"
)

var cst = time.FixedZone("CST", 8*60*60)

func fixedNow() time.Time { return time.Date(2024, 3, 1, 15, 4, 5, 0, cst) }

func sampleTimeline() timeline.Timeline {
	tl := timeline.Timeline{Code: "600519", PreClose: 1790}
	clocks := [][2]int{{9, 30}, {10, 0}, {10, 30}, {11, 0}, {13, 30}, {14, 30}}
	prices := []float64{1790, 1795, 1788, 1801, 1805, 1799}
	for i, p := range prices {
		tl.Points = append(tl.Points, timeline.Point{
			Time:     time.Date(2024, 3, 1, clocks[i][0], clocks[i][1], 0, 0, cst),
			Price:    p,
			AvgPrice: p - 1,
			Volume:   float64(1000 * (i + 1)),
			Amount:   float64(2_000_000 * (i + 1)),
			PreClose: 1790,
		})
	}
	return tl
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestIntraday_WritesFixedFile(t *testing.T) {
	t.Parallel()

	// Arrange
	dir := t.TempDir()
	m := metrics.New(prometheus.NewRegistry())
	r := chart.NewRenderer(chart.Config{Dir: dir, Location: cst}, chart.WithClock(fixedNow), chart.WithMetrics(m))
	q := quote.Quote{Code: "600519", Name: "示例股份", Price: 1799, PreClose: 1790}

	// Act
	path, err := r.Intraday(q, sampleTimeline())

	// Assert
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "kline.png"), path)
	w, h := decodeSize(t, path)
	require.Equal(t, 1500, w)
	require.Equal(t, 800, h)
	require.InDelta(t, 1, testutil.ToFloat64(m.Charts.WithLabelValues("intraday", "success")), 0)
}

func TestIntraday_NoChartCases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		q    quote.Quote
		tl   timeline.Timeline
		err  error
	}{
		{"empty timeline", quote.Quote{Code: "600519", Price: 1, PreClose: 1}, timeline.Timeline{}, chart.ErrEmptyTimeline},
		{"no previous close", quote.Quote{Code: "600519", Price: 1}, timeline.Timeline{Points: sampleTimeline().Points}, chart.ErrNoPreClose},
		{"previous close of another security", quote.Quote{Code: "159949", Price: 2.4, PreClose: 2.38}, sampleTimeline(), chart.ErrAxisRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			r := chart.NewRenderer(chart.Config{Dir: dir})

			path, err := r.Intraday(tc.q, tc.tl)

			require.Empty(t, path)
			require.ErrorIs(t, err, tc.err)
			entries, readErr := os.ReadDir(dir)
			require.NoError(t, readErr)
			require.Empty(t, entries)
		})
	}
}

func TestIntraday_BadFontIsNoChart(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.Config{Dir: t.TempDir(), FontPath: filepath.Join(t.TempDir(), "missing.ttf")})

	path, err := r.Intraday(quote.Quote{Code: "600519", Price: 1799, PreClose: 1790}, sampleTimeline())

	require.Empty(t, path)
	require.ErrorContains(t, err, "load font")
}

func TestIntraday_FallsBackToTimelinePreClose(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.Config{Dir: t.TempDir()})

	path, err := r.Intraday(quote.Quote{Code: "600519", Price: 1799}, sampleTimeline())

	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestTimeline_TimestampedFileInNewDir(t *testing.T) {
	t.Parallel()

	// Arrange: a directory that does not exist yet
	dir := filepath.Join(t.TempDir(), "charts", "nested")
	r := chart.NewRenderer(chart.Config{Location: cst}, chart.WithClock(fixedNow))

	// Act
	path, err := r.Timeline("600519", sampleTimeline(), dir)

	// Assert
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "600519_timeline_20240301_150405.png"), path)
	w, h := decodeSize(t, path)
	require.Equal(t, 1500, w)
	require.Equal(t, 1000, h)
}

func TestTimeline_WithoutPreClose(t *testing.T) {
	t.Parallel()

	tl := sampleTimeline()
	tl.PreClose = 0

	path, err := chart.NewRenderer(chart.Config{}).Timeline("600519", tl, t.TempDir())

	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestTimeline_Empty(t *testing.T) {
	t.Parallel()

	path, err := chart.NewRenderer(chart.Config{}).Timeline("600519", timeline.Timeline{}, t.TempDir())

	require.Empty(t, path)
	require.ErrorIs(t, err, chart.ErrEmptyTimeline)
}

func TestVolumeLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "150万手", chart.VolumeLabel(1_500_000))
	require.Equal(t, "100万手", chart.VolumeLabel(1_000_000))
	require.Equal(t, "9999手", chart.VolumeLabel(999_900))
	require.Equal(t, "0手", chart.VolumeLabel(0))
}
