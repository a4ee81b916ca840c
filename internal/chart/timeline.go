package chart

import (
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"stockquote/internal/timeline"
)

const (
	timelineWidth  = 1500
	timelineHeight = 1000
)

// Timeline draws the secondary chart into dir under a timestamped name:
// price and average-price lines split at midday above, volume bars below,
// 09:30-16:00 with the 12:00-13:00 break shaded.
func (r *Renderer) Timeline(code string, tl timeline.Timeline, dir string) (path string, err error) {
	defer r.guard("timeline", &path, &err)

	if tl.Empty() {
		return "", ErrEmptyTimeline
	}
	dc, err := r.newContext(timelineWidth, timelineHeight)
	if err != nil {
		return "", err
	}

	day := tl.Points[0].Time
	lo, hi := priceRange(tl)
	upper := panel{
		x: 90, y: 60, w: timelineWidth - 150, h: 630,
		t0: clock(day, 9, 30), t1: clock(day, 16, 0),
		yMin: lo, yMax: hi,
	}
	lower := upper
	lower.y, lower.h = 720, 210
	lower.yMin, lower.yMax = 0, maxVolume(tl)*1.05
	if lower.yMax == 0 {
		lower.yMax = 1
	}
	ticks := halfHours(upper.t0, upper.t1)

	dc.SetColor(color.White)
	dc.Clear()
	for _, p := range []panel{upper, lower} {
		p.frame(dc)
		p.shade(dc, clock(day, 12, 0), clock(day, 13, 0), color.RGBA{0xD3, 0xD3, 0xD3, 0x4D})
		p.vgrid(dc, ticks)
	}

	for i := 0; i <= 10; i++ {
		v := upper.yMin + (upper.yMax-upper.yMin)*float64(i)/10
		upper.hline(dc, v, gridColor, 1, true)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(priceLabel(v, upper.yMax), upper.x-8, upper.py(v), 1, 0.5)
	}

	dc.Push()
	dc.DrawRectangle(upper.x, upper.y, upper.w, upper.h)
	dc.Clip()
	if tl.PreClose > 0 {
		upper.hline(dc, tl.PreClose, color.RGBA{0x80, 0x80, 0x80, 0x4D}, 1, false)
	}
	morning, afternoon := splitMidday(tl.Points)
	for _, part := range [][]timeline.Point{morning, afternoon} {
		polyline(dc, upper, part, func(p timeline.Point) float64 { return p.Price }, priceBlue, 1.5, false)
		polyline(dc, upper, part, func(p timeline.Point) float64 { return p.AvgPrice }, color.RGBA{0xE0, 0x1E, 0x1E, 0xCC}, 1, true)
	}
	dc.Pop()

	barWidth := max(1, upper.w/upper.t1.Sub(upper.t0).Minutes()*0.5)
	for i, p := range tl.Points {
		rising := p.Price >= tl.PreClose
		if i > 0 {
			rising = p.Price >= tl.Points[i-1].Price
		}
		if rising {
			dc.SetColor(gainColor)
		} else {
			dc.SetColor(lossColor)
		}
		top := lower.py(p.Volume)
		dc.DrawRectangle(lower.px(p.Time)-barWidth/2, top, barWidth, lower.y+lower.h-top)
		dc.Fill()
	}

	dc.SetColor(textColor)
	for i := 0; i <= 4; i++ {
		v := lower.yMax * float64(i) / 4
		dc.DrawStringAnchored(VolumeLabel(v), lower.x-8, lower.py(v), 1, 0.5)
	}
	for _, t := range ticks {
		x, y := lower.px(t), lower.y+lower.h+14
		dc.Push()
		dc.RotateAbout(gg.Radians(-45), x, y)
		dc.DrawStringAnchored(t.Format("15:04"), x, y, 1, 0.5)
		dc.Pop()
	}
	dc.DrawStringAnchored("价格(元)", upper.x, upper.y-8, 0, 0)
	dc.DrawStringAnchored("成交量", lower.x, lower.y-6, 0, 0)
	legend(dc, upper.x+12, upper.y+16)

	title := fmt.Sprintf("%s 分时图 - %s", code, r.now().In(r.cfg.Location).Format("2006-01-02"))
	if tl.PreClose > 0 {
		last := tl.Points[len(tl.Points)-1].Price
		title += fmt.Sprintf(" 涨跌幅：%+.2f%%", (last-tl.PreClose)/tl.PreClose*100)
	}
	dc.DrawStringAnchored(title, timelineWidth/2, 28, 0.5, 0.5)

	if dir == "" {
		dir = "charts"
	}
	name := fmt.Sprintf("%s_timeline_%s.png", code, r.now().In(r.cfg.Location).Format("20060102_150405"))
	return save(dc, dir, name)
}

// VolumeLabel formats a raw volume in lots: 万手 from one million up.
func VolumeLabel(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("%.0f万手", v/10_000)
	}
	return fmt.Sprintf("%.0f手", v/100)
}

// priceRange pads the price range by 10% on each side, never below zero.
func priceRange(tl timeline.Timeline) (float64, float64) {
	lo, hi := tl.Points[0].Price, tl.Points[0].Price
	for _, p := range tl.Points[1:] {
		lo = min(lo, p.Price)
		hi = max(hi, p.Price)
	}
	margin := (hi - lo) * 0.1
	if margin == 0 {
		margin = max(hi*0.01, 0.01)
	}
	return max(0, lo-margin), hi + margin
}

func maxVolume(tl timeline.Timeline) float64 {
	var m float64
	for _, p := range tl.Points {
		m = max(m, p.Volume)
	}
	return m
}

func splitMidday(points []timeline.Point) (morning, afternoon []timeline.Point) {
	for i, p := range points {
		if p.Time.Hour() >= 12 {
			return points[:i], points[i:]
		}
	}
	return points, nil
}

func halfHours(from, to time.Time) []time.Time {
	var out []time.Time
	for t := from; !t.After(to); t = t.Add(30 * time.Minute) {
		out = append(out, t)
	}
	return out
}

func polyline(dc *gg.Context, p panel, points []timeline.Point, value func(timeline.Point) float64, c color.Color, width float64, dashed bool) {
	if len(points) < 2 {
		return
	}
	dc.NewSubPath()
	for i, pt := range points {
		if i == 0 {
			dc.MoveTo(p.px(pt.Time), p.py(value(pt)))
			continue
		}
		dc.LineTo(p.px(pt.Time), p.py(value(pt)))
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	if dashed {
		dc.SetDash(6, 4)
	}
	dc.Stroke()
	dc.SetDash()
}

func legend(dc *gg.Context, x, y float64) {
	dc.SetColor(priceBlue)
	dc.SetLineWidth(1.5)
	dc.DrawLine(x, y, x+24, y)
	dc.Stroke()
	dc.SetColor(textColor)
	dc.DrawStringAnchored("价格", x+30, y, 0, 0.5)

	dc.SetColor(gainColor)
	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	dc.DrawLine(x, y+18, x+24, y+18)
	dc.Stroke()
	dc.SetDash()
	dc.SetColor(textColor)
	dc.DrawStringAnchored("均价", x+30, y+18, 0, 0.5)
}
