package chart

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyTimeline means there is nothing to draw.
	ErrEmptyTimeline = errors.New("empty timeline")
	// ErrNoPreClose means percent changes cannot be computed.
	ErrNoPreClose = errors.New("previous close is zero")
	// ErrAxisRange means the prices are too far from the previous close to be
	// one trading day of the same security.
	ErrAxisRange = errors.New("percent change out of chartable range")
)

// Tone is the color role of a percent label.
type Tone int

const (
	Flat Tone = iota
	Gain
	Loss
)

// Tick is one percent-axis label.
type Tick struct {
	Value float64
	Label string
	Tone  Tone
}

// PercentAxis is a symmetric percent-change axis around zero.
type PercentAxis struct {
	// Step is the spacing of the round ticks.
	Step float64
	// Extreme is the outermost tick, max |change| rounded up to 0.1.
	Extreme float64
	// Min and Max are the axis limits: the extremes plus a tenth of a step.
	Min, Max float64
	// Ticks run from -Extreme to +Extreme with exactly one zero.
	Ticks []Tick
}

const (
	// a round tick closer than this share of a step to the extreme is dropped
	crowdShare = 0.3
	// limits sit this share of a step beyond the extremes
	marginShare = 0.1
	eps         = 1e-9

	// upper bound on round ticks per side
	maxRoundTicks = 200
)

// StepFor picks the tick step for a maximum absolute change in percent.
func StepFor(maxAbsChange float64) float64 {
	switch {
	case maxAbsChange < 1:
		return 0.2
	case maxAbsChange < 2:
		return 0.5
	case maxAbsChange < 5:
		return 1.0
	}
	return 2.0
}

// NewPercentAxis builds the axis for a maximum absolute change in percent.
func NewPercentAxis(maxAbsChange float64) PercentAxis {
	maxAbsChange = math.Abs(maxAbsChange)
	step := StepFor(maxAbsChange)

	// round ticks 0, step, 2*step, ... strictly below the maximum
	var round []float64
	n := int(math.Ceil(maxAbsChange/step - eps))
	for i := 1; i < n; i++ {
		round = append(round, float64(i)*step)
	}
	last := 0.0
	if len(round) > 0 {
		last = round[len(round)-1]
	}
	if len(round) > 0 && maxAbsChange-last < crowdShare*step {
		round = round[:len(round)-1]
	}

	extreme := math.Ceil(maxAbsChange*10) / 10
	if len(round) > 0 && math.Abs(round[len(round)-1]-extreme) < eps {
		round = round[:len(round)-1]
	}

	// Intermediate labels have no decimals, so with a 0.2 step they read
	// "+0%" and "+1%" at 0.4 and 0.6. Only the extremes carry one decimal.
	ticks := make([]Tick, 0, 2*len(round)+3)
	if extreme > 0 {
		ticks = append(ticks, Tick{Value: -extreme, Label: fmt.Sprintf("%.1f%%", -extreme), Tone: Loss})
	}
	for i := len(round) - 1; i >= 0; i-- {
		ticks = append(ticks, Tick{Value: -round[i], Label: fmt.Sprintf("%.0f%%", -round[i]), Tone: Loss})
	}
	ticks = append(ticks, Tick{Value: 0, Label: "0.00%", Tone: Flat})
	for _, v := range round {
		ticks = append(ticks, Tick{Value: v, Label: fmt.Sprintf("%+.0f%%", v), Tone: Gain})
	}
	if extreme > 0 {
		ticks = append(ticks, Tick{Value: extreme, Label: fmt.Sprintf("%+.1f%%", extreme), Tone: Gain})
	}

	margin := marginShare * step
	return PercentAxis{
		Step:    step,
		Extreme: extreme,
		Min:     -extreme - margin,
		Max:     extreme + margin,
		Ticks:   ticks,
	}
}

// MaxAbsChange is the larger of the series' max and min deviation from
// preClose, in percent.
func MaxAbsChange(prices []float64, preClose float64) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrEmptyTimeline
	}
	if preClose <= 0 {
		return 0, ErrNoPreClose
	}
	hi, lo := prices[0], prices[0]
	for _, p := range prices[1:] {
		hi = max(hi, p)
		lo = min(lo, p)
	}
	up := (hi - preClose) / preClose * 100
	down := (lo - preClose) / preClose * 100
	return max(math.Abs(up), math.Abs(down)), nil
}

// PercentAxisFor builds the axis for a price series. A series whose change
// would need more than a few hundred ticks returns ErrAxisRange; it usually
// means preClose and the prices belong to different securities.
func PercentAxisFor(prices []float64, preClose float64) (PercentAxis, error) {
	m, err := MaxAbsChange(prices, preClose)
	if err != nil {
		return PercentAxis{}, err
	}
	if math.IsNaN(m) || math.IsInf(m, 0) || m/StepFor(m) > maxRoundTicks {
		return PercentAxis{}, fmt.Errorf("%w: %.2f%%", ErrAxisRange, m)
	}
	return NewPercentAxis(m), nil
}
