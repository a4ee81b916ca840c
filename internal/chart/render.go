// Package chart renders intraday charts as PNG files.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"stockquote/internal/metrics"
)

// Config is fixed at construction.
type Config struct {
	// Dir and Filename locate the intraday chart.
	Dir      string
	Filename string
	// FontPath is a TrueType font; CJK titles need one. Empty uses the
	// built-in bitmap face.
	FontPath string
	FontSize float64
	Location *time.Location
}

// Renderer draws charts. Failures never panic out of it; they come back as
// an empty path and an error.
type Renderer struct {
	cfg     Config
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock replaces time.Now for titles and file names.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithMetrics counts render attempts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// NewRenderer creates a renderer.
func NewRenderer(cfg Config, opts ...Option) *Renderer {
	if cfg.Filename == "" {
		cfg.Filename = "kline.png"
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = 12
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	r := &Renderer{cfg: cfg, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// guard turns a drawing panic into an error and records the outcome.
func (r *Renderer) guard(name string, path *string, err *error) {
	if p := recover(); p != nil {
		*path, *err = "", fmt.Errorf("render %s: panic: %v", name, p)
	}
	if *err != nil {
		*path = ""
		r.log.Warn("no chart produced", zap.String("renderer", name), zap.Error(*err))
	}
	r.metrics.Chart(name, *err)
}

func (r *Renderer) newContext(w, h int) (*gg.Context, error) {
	dc := gg.NewContext(w, h)
	if r.cfg.FontPath != "" {
		if err := dc.LoadFontFace(r.cfg.FontPath, r.cfg.FontSize); err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
	}
	return dc, nil
}

func save(dc *gg.Context, dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}

var (
	background = color.RGBA{0xF6, 0xF6, 0xF6, 0xFF}
	gainColor  = color.RGBA{0xE0, 0x1E, 0x1E, 0xFF}
	lossColor  = color.RGBA{0x1E, 0x9E, 0x3A, 0xFF}
	flatColor  = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	gridColor  = color.RGBA{0x00, 0x00, 0x00, 0x22}
	recessFill = color.RGBA{0x80, 0x80, 0x80, 0x1A}
	priceBlue  = color.RGBA{0x1F, 0x4E, 0xD8, 0xFF}
	textColor  = color.RGBA{0x20, 0x20, 0x20, 0xFF}
)

func toneColor(t Tone) color.Color {
	switch t {
	case Gain:
		return gainColor
	case Loss:
		return lossColor
	}
	return flatColor
}

// panel maps data coordinates onto a pixel rectangle.
type panel struct {
	x, y, w, h float64
	t0, t1     time.Time
	yMin, yMax float64
}

func (p panel) px(t time.Time) float64 {
	span := p.t1.Sub(p.t0).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + t.Sub(p.t0).Seconds()/span*p.w
}

func (p panel) py(v float64) float64 {
	if p.yMax == p.yMin {
		return p.y + p.h/2
	}
	return p.y + p.h - (v-p.yMin)/(p.yMax-p.yMin)*p.h
}

func (p panel) frame(dc *gg.Context) {
	dc.SetColor(background)
	dc.DrawRectangle(p.x, p.y, p.w, p.h)
	dc.Fill()
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.x, p.y, p.w, p.h)
	dc.Stroke()
}

func (p panel) shade(dc *gg.Context, from, to time.Time, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(p.px(from), p.y, p.px(to)-p.px(from), p.h)
	dc.Fill()
}

func (p panel) hline(dc *gg.Context, v float64, c color.Color, width float64, dashed bool) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	if dashed {
		dc.SetDash(6, 4)
	}
	dc.DrawLine(p.x, p.py(v), p.x+p.w, p.py(v))
	dc.Stroke()
	dc.SetDash()
}

func (p panel) vgrid(dc *gg.Context, ticks []time.Time) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	for _, t := range ticks {
		dc.DrawLine(p.px(t), p.y, p.px(t), p.y+p.h)
		dc.Stroke()
	}
	dc.SetDash()
}

// clock returns the given wall-clock time on day's date.
func clock(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}
