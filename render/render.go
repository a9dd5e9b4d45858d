// Package render draws amplitude-distribution charts from aggregated audio
// statistics.
//
// Each chart plots histogram bin counts against sample amplitude on a
// logarithmic count axis, with the track count, total length, peak, and RMS
// levels annotated along the bottom edge. Rendering state is scoped to a
// single call; no canvas or style state is shared between renders.
package render

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/cwbudde/audiohist/aggregate"
)

// Config defines chart rendering settings.
type Config struct {
	Width  float64 // inches
	Height float64 // inches
	DPI    int
	Style  Style
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults: 10.24 x 6.4 inches at 100 DPI in
// the default dark style.
func DefaultConfig() Config {
	return Config{
		Width:  10.24,
		Height: 6.4,
		DPI:    100,
		Style:  DefaultStyle(),
	}
}

// WithSize sets the output size in inches.
func WithSize(width, height float64) Option {
	return func(cfg *Config) {
		if width > 0 && height > 0 {
			cfg.Width = width
			cfg.Height = height
		}
	}
}

// WithDPI sets the output resolution.
func WithDPI(dpi int) Option {
	return func(cfg *Config) {
		if dpi > 0 {
			cfg.DPI = dpi
		}
	}
}

// WithStyle sets the chart colors.
func WithStyle(style Style) Option {
	return func(cfg *Config) {
		cfg.Style = style
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Renderer draws AudioInfo charts. It holds only configuration and is safe
// for concurrent use.
type Renderer struct {
	cfg Config
}

// New creates a Renderer with the given options.
func New(opts ...Option) *Renderer {
	return &Renderer{cfg: ApplyOptions(opts...)}
}

// Render draws the chart for info and writes it as a PNG to w.
func (r *Renderer) Render(w io.Writer, info aggregate.AudioInfo, title string) error {
	p, err := r.buildPlot(info, title)
	if err != nil {
		return err
	}

	style := r.cfg.Style

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.cfg.Width)*vg.Inch, vg.Length(r.cfg.Height)*vg.Inch),
		vgimg.UseDPI(r.cfg.DPI),
		vgimg.UseBackgroundColor(style.Background),
	)
	dc := draw.New(canvas)

	// Reserve a strip below the plot for the summary annotations.
	footer := vg.Points(16)
	plotArea := dc
	plotArea.Min.Y += footer

	p.Draw(plotArea)

	sty := p.X.Label.TextStyle
	sty.Color = style.Foreground
	sty.Font.Size = vg.Points(9)
	sty.YAlign = text.YBottom

	left := fmt.Sprintf("Tracks: %d, Length: %s", info.Tracks, aggregate.FormatLength(info.Length))
	sty.XAlign = text.XLeft
	dc.FillText(sty, vg.Point{X: dc.Min.X + vg.Points(6), Y: dc.Min.Y + vg.Points(4)}, left)

	right := fmt.Sprintf("Peak: %.2f dB FS, RMS(Sine): %.2f dB FS", info.Peak, info.RMS)
	sty.XAlign = text.XRight
	dc.FillText(sty, vg.Point{X: dc.Max.X - vg.Points(6), Y: dc.Min.Y + vg.Points(4)}, right)

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	return nil
}

// Save renders the chart for info into a PNG file at path.
func (r *Renderer) Save(path string, info aggregate.AudioInfo, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := r.Render(f, info, title); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// buildPlot assembles the styled histogram plot without drawing it.
func (r *Renderer) buildPlot(info aggregate.AudioInfo, title string) (*plot.Plot, error) {
	style := r.cfg.Style

	p := plot.New()

	p.Title.Text = title
	p.Title.Padding = vg.Points(8)
	p.Title.TextStyle.Color = style.Foreground

	p.BackgroundColor = style.Background

	p.X.Label.Text = "Sample Value"
	p.Y.Label.Text = "Number of Samples"

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = style.Foreground
		ax.Label.TextStyle.Color = style.Foreground
		ax.Tick.LineStyle.Color = style.Foreground
		ax.Tick.Label.Color = style.Foreground
	}

	// Logarithmic count axis floored at one sample, as zero counts have no
	// log-domain position.
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = 1

	grid := plotter.NewGrid()
	grid.Vertical.Color = style.Grid
	grid.Horizontal.Color = style.Grid
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(grid)

	line, err := plotter.NewLine(binPoints(info))
	if err != nil {
		return nil, fmt.Errorf("build histogram trace: %w", err)
	}

	line.Color = style.Line
	line.Width = vg.Points(1)
	p.Add(line)

	return p, nil
}

// binPoints maps each bin's lower edge to its count, clamped to the log floor.
func binPoints(info aggregate.AudioInfo) plotter.XYs {
	h := info.Histogram

	pts := make(plotter.XYs, len(h.Bins))
	for i, n := range h.Bins {
		pts[i].X = h.Edges[i]
		pts[i].Y = math.Max(float64(n), 1)
	}

	return pts
}
