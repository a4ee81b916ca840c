package chart

import (
	"fmt"
	"image/color"
	"time"

	"stockquote/internal/quote"
	"stockquote/internal/timeline"
)

const (
	intradayWidth  = 1500
	intradayHeight = 800
	// amounts are drawn in units of 1000 of the raw amount
	amountUnit = 1000
)

// Intraday draws the primary chart: price line with a synchronized percent
// axis above, amount bars below, 09:30-15:00. The file name is fixed, so each
// call replaces the previous chart.
func (r *Renderer) Intraday(q quote.Quote, tl timeline.Timeline) (path string, err error) {
	defer r.guard("intraday", &path, &err)

	if tl.Empty() {
		return "", ErrEmptyTimeline
	}
	preClose := q.PreClose
	if preClose <= 0 {
		preClose = tl.PreClose
	}
	prices := tl.Prices()
	axis, err := PercentAxisFor(prices, preClose)
	if err != nil {
		return "", err
	}
	dc, err := r.newContext(intradayWidth, intradayHeight)
	if err != nil {
		return "", err
	}

	day := tl.Points[0].Time
	upper := panel{
		x: 90, y: 50, w: intradayWidth - 180, h: 560,
		t0: clock(day, 9, 30), t1: clock(day, 15, 0),
		yMin: preClose * (1 + axis.Min/100),
		yMax: preClose * (1 + axis.Max/100),
	}
	lower := upper
	lower.y, lower.h = 630, 120
	lower.yMin, lower.yMax = 0, maxAmount(tl)*1.05/amountUnit
	if lower.yMax == 0 {
		lower.yMax = 1
	}

	dc.SetColor(color.White)
	dc.Clear()
	for _, p := range []panel{upper, lower} {
		p.frame(dc)
		p.shade(dc, clock(day, 11, 30), clock(day, 13, 0), recessFill)
		p.vgrid(dc, intradayTicks(day))
	}

	// percent grid and labels on both sides
	for _, tk := range axis.Ticks {
		v := preClose * (1 + tk.Value/100)
		upper.hline(dc, v, gridColor, 1, true)
		dc.SetColor(toneColor(tk.Tone))
		dc.DrawStringAnchored(tk.Label, upper.x+upper.w+8, upper.py(v), 0, 0.5)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(priceLabel(v, preClose), upper.x-8, upper.py(v), 1, 0.5)
	}
	upper.hline(dc, preClose, color.RGBA{0x80, 0x80, 0x80, 0x66}, 0.8, true)

	dc.SetLineWidth(1.2)
	for i := 1; i < len(tl.Points); i++ {
		a, b := tl.Points[i-1], tl.Points[i]
		if b.Price >= preClose {
			dc.SetColor(gainColor)
		} else {
			dc.SetColor(lossColor)
		}
		dc.DrawLine(upper.px(a.Time), upper.py(a.Price), upper.px(b.Time), upper.py(b.Price))
		dc.Stroke()
	}

	barWidth := max(1, upper.w/upper.t1.Sub(upper.t0).Minutes()*0.6)
	for i, p := range tl.Points {
		prev := preClose
		if i > 0 {
			prev = tl.Points[i-1].Price
		}
		if p.Price > prev {
			dc.SetColor(gainColor)
		} else {
			dc.SetColor(lossColor)
		}
		top := lower.py(p.Amount / amountUnit)
		dc.DrawRectangle(lower.px(p.Time)-barWidth/2, top, barWidth, lower.y+lower.h-top)
		dc.Fill()
	}

	dc.SetColor(textColor)
	for _, t := range intradayTicks(day) {
		dc.DrawStringAnchored(t.Format("15:04"), upper.px(t), lower.y+lower.h+16, 0.5, 0.5)
	}
	dc.DrawStringAnchored(fmt.Sprintf("%.1f", lower.yMax), lower.x-8, lower.y, 1, 0.5)
	dc.DrawStringAnchored("0", lower.x-8, lower.y+lower.h, 1, 0.5)
	dc.DrawStringAnchored("价格(元)", upper.x, upper.y-8, 0, 0)
	dc.DrawStringAnchored("涨跌幅(%)", upper.x+upper.w, upper.y-8, 1, 0)
	dc.DrawStringAnchored("成交额(千万元)", lower.x, lower.y-6, 0, 0)

	change := (q.Price - preClose) / preClose * 100
	title := fmt.Sprintf("%s (%s) 分时图 - %s 涨跌幅: %.2f%%",
		q.Name, q.Code, r.now().In(r.cfg.Location).Format("2006-01-02"), change)
	dc.DrawStringAnchored(title, intradayWidth/2, 22, 0.5, 0.5)

	return save(dc, r.cfg.Dir, r.cfg.Filename)
}

// intradayTicks are the half-hour trading boundaries from 09:30 to 15:00.
func intradayTicks(day time.Time) []time.Time {
	return []time.Time{
		clock(day, 9, 30), clock(day, 10, 0), clock(day, 10, 30), clock(day, 11, 0), clock(day, 11, 30),
		clock(day, 13, 0), clock(day, 13, 30), clock(day, 14, 0), clock(day, 14, 30), clock(day, 15, 0),
	}
}

func maxAmount(tl timeline.Timeline) float64 {
	var m float64
	for _, p := range tl.Points {
		m = max(m, p.Amount)
	}
	return m
}

func priceLabel(v, preClose float64) string {
	if preClose < 10 {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
