package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockquote/internal/timeline"
)

var cst = time.FixedZone("CST", 8*60*60)

func newBuilder() *timeline.Builder {
	return timeline.NewBuilder(
		timeline.WithLocation(cst),
		timeline.WithClock(func() time.Time { return time.Date(2024, 3, 1, 16, 0, 0, 0, cst) }),
	)
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, cst)
}

func TestBuild_DedupeKeepsLast(t *testing.T) {
	t.Parallel()

	// Arrange: two ticks at 10:00 with different prices
	ticks := []string{
		"2024-03-01 10:00,10.00,10.00,0,0,100,1000,0",
		"2024-03-01 10:01,10.10,10.05,0,0,100,1000,0",
		"2024-03-01 10:00,10.20,10.10,0,0,200,2000,0",
	}

	// Act
	tl := newBuilder().Build("600519", ticks, 9.9)

	// Assert: one point at 10:00 carrying the later price
	require.Len(t, tl.Points, 2)
	require.True(t, tl.Points[0].Time.Equal(at(10, 0)))
	require.InDelta(t, 10.20, tl.Points[0].Price, 0)
	require.InDelta(t, 200.0, tl.Points[0].Volume, 0)
	require.InDelta(t, 9.9, tl.Points[0].PreClose, 0)
}

func TestBuild_SortsAscending(t *testing.T) {
	t.Parallel()

	ticks := []string{
		"2024-03-01 14:00,3,3,0,0,1,1",
		"2024-03-01 09:31,1,1,0,0,1,1",
		"2024-03-01 13:05,2,2,0,0,1,1",
		"2024-03-01 10:15,4,4,0,0,1,1",
	}

	tl := newBuilder().Build("600519", ticks, 1)

	require.Len(t, tl.Points, 4)
	for i := 1; i < len(tl.Points); i++ {
		require.False(t, tl.Points[i].Time.Before(tl.Points[i-1].Time))
	}
	require.InDelta(t, 1.0, tl.Points[0].Price, 0)
	require.InDelta(t, 3.0, tl.Points[3].Price, 0)
}

func TestBuild_DropsMalformedTicks(t *testing.T) {
	t.Parallel()

	ticks := []string{
		"2024-03-01 10:00,10,10,0,0,1",          // too few fields
		"yesterday,10,10,0,0,1,1",               // bad time
		"2024-03-01 25:99,10,10,0,0,1,1",        // bad date-time
		"2024-03-01 10:01,abc,10,0,0,1,1",       // bad price
		"2024-03-01 10:02,10.5,10.4,0,0,300,42", // ok
	}

	tl := newBuilder().Build("600519", ticks, 10)

	require.Len(t, tl.Points, 1)
	require.InDelta(t, 10.5, tl.Points[0].Price, 0)
	require.InDelta(t, 10.4, tl.Points[0].AvgPrice, 0)
	require.InDelta(t, 42.0, tl.Points[0].Amount, 0)
}

func TestBuild_BareClockUsesToday(t *testing.T) {
	t.Parallel()

	tl := newBuilder().Build("00700", []string{"10:30,320,319,0,0,1,1"}, 318)

	require.Len(t, tl.Points, 1)
	require.True(t, tl.Points[0].Time.Equal(at(10, 30)))
}

func TestBuild_EmptyAfterFiltering(t *testing.T) {
	t.Parallel()

	tl := newBuilder().Build("600519", []string{"2024-03-01 09:15,1,1,0,0,1,1", "2024-03-01 12:30,1,1,0,0,1,1"}, 1)

	require.True(t, tl.Empty())
	require.Equal(t, "600519", tl.Code)
}

func TestInSession(t *testing.T) {
	t.Parallel()

	included := []time.Time{at(9, 30), at(9, 31), at(10, 15), at(11, 29), at(11, 30), at(13, 0), at(13, 5), at(15, 0), at(15, 59)}
	excluded := []time.Time{at(9, 15), at(9, 29), at(11, 45), at(12, 0), at(12, 30), at(16, 0), at(8, 0)}

	for _, ts := range included {
		require.True(t, timeline.InSession(ts), ts.Format("15:04"))
	}
	for _, ts := range excluded {
		require.False(t, timeline.InSession(ts), ts.Format("15:04"))
	}
}

func TestFromPayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data map[string]any
		want float64
	}{
		{"preclose", map[string]any{"preclose": 10.5, "f46": 9.0}, 10.5},
		{"f46 fallback", map[string]any{"preclose": 0.0, "f46": "9.0"}, 9.0},
		{"neither", map[string]any{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.data["trends"] = []any{"2024-03-01 09:30,10,10,0,0,1,1", 42}
			tl := newBuilder().FromPayload("600519", tc.data)

			require.InDelta(t, tc.want, tl.PreClose, 0)
			require.Len(t, tl.Points, 1)
		})
	}
}

func TestVolumeChangeRate(t *testing.T) {
	t.Parallel()

	points := func(volumes ...float64) timeline.Timeline {
		var tl timeline.Timeline
		for i, v := range volumes {
			tl.Points = append(tl.Points, timeline.Point{Time: at(10, i), Volume: v})
		}
		return tl
	}

	require.InDelta(t, 100.0, points(1, 10, 10, 10, 10, 10, 20).VolumeChangeRate(6), 0)
	require.InDelta(t, -50.0, points(10, 10, 10, 10, 10, 5).VolumeChangeRate(6), 0)
	require.Zero(t, points(10, 10, 20).VolumeChangeRate(6))
	require.Zero(t, points(0, 0, 0, 0, 0, 20).VolumeChangeRate(6))
}
