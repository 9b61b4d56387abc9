// Package chart renders a forecast series as a line chart image.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"forecast-mailer/internal/types"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("forecast series is empty")

const (
	FormatPNG = "png"

	defaultWidthInches  = 12
	defaultHeightInches = 8
	defaultDPI          = 96
)

var (
	colorTemperature = color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff} // darkorange
	colorHumidity    = color.RGBA{R: 0x41, G: 0x69, B: 0xe1, A: 0xff} // royalblue
	colorWindSpeed   = color.RGBA{R: 0x22, G: 0x8b, B: 0x22, A: 0xff} // forestgreen
	colorGrid        = color.Gray{Y: 0xc8}
)

// Artifact is an encoded chart image held in memory
type Artifact struct {
	Data   []byte
	Format string
}

func (a *Artifact) ContentType() string {
	return "image/" + a.Format
}

func (a *Artifact) Filename() string {
	return "weather_forecast." + a.Format
}

// Options are the fixed rendering parameters. Zero fields take defaults.
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          int
	Title        string
}

func (o Options) withDefaults() Options {
	if o.WidthInches <= 0 {
		o.WidthInches = defaultWidthInches
	}
	if o.HeightInches <= 0 {
		o.HeightInches = defaultHeightInches
	}
	if o.DPI <= 0 {
		o.DPI = defaultDPI
	}
	if o.Title == "" {
		o.Title = "5-Day Weather Forecast"
	}
	return o
}

// Renderer draws temperature, humidity and wind speed against time
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger, opts Options) *Renderer {
	return &Renderer{
		opts:   opts.withDefaults(),
		logger: logger.With("component", "chart-renderer"),
	}
}

// Render plots the series and encodes it as PNG. The output depends only
// on the series and the renderer options.
func (r *Renderer) Render(series *types.ForecastSeries) (*Artifact, error) {
	if series.IsEmpty() {
		return nil, ErrEmptySeries
	}

	p, err := r.newPlot(series)
	if err != nil {
		return nil, err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	r.logger.Debug("rendered chart",
		"points", series.Len(),
		"bytes", buf.Len(),
	)

	return &Artifact{Data: buf.Bytes(), Format: FormatPNG}, nil
}

func (r *Renderer) newPlot(series *types.ForecastSeries) (*plot.Plot, error) {
	loc := series.Location()

	p := plot.New()
	p.Title.Text = r.opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(20)

	p.X.Label.Text = "Date and Time"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = "Value"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Marker = plot.TimeTicks{
		Format: "Jan 02 15:04",
		Time: func(t float64) time.Time {
			return time.Unix(int64(t), 0).In(loc)
		},
	}
	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = colorGrid
	p.Add(grid)

	lines := []struct {
		label string
		color color.Color
		value func(types.ForecastPoint) float64
	}{
		{"Temperature (°C)", colorTemperature, func(fp types.ForecastPoint) float64 { return fp.TemperatureCelsius }},
		{"Humidity (%)", colorHumidity, func(fp types.ForecastPoint) float64 { return fp.HumidityPercent }},
		{"Wind Speed (m/s)", colorWindSpeed, func(fp types.ForecastPoint) float64 { return fp.WindSpeedMps }},
	}

	for _, l := range lines {
		xys := make(plotter.XYs, len(series.Points))
		for i, fp := range series.Points {
			xys[i].X = float64(fp.Timestamp.Unix())
			xys[i].Y = l.value(fp)
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s series: %w", l.label, err)
		}
		line.LineStyle.Color = l.color
		line.LineStyle.Width = vg.Points(2.5)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Color = l.color
		points.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(l.label, line, points)
	}

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(12)

	return p, nil
}
