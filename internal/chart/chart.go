// Package chart draws horizontal bar charts of recurring windows.
//
// Bars are drawn directly on a go-chart Renderer, so the same layout code
// produces PNG and SVG output. The Chrome backend rasterizes the SVG through a
// headless browser instead of the built-in rasterizer.
package chart

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/net/html"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// Format is the image format of a chart.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Layout defaults.
const (
	DefaultWidth     = 1200
	DefaultBarHeight = 22
	DefaultMaxLabel  = 60

	padding     = 20
	titleHeight = 40
	axisHeight  = 40
	barGap      = 8
	labelGap    = 10
	emptyHeight = 60
	fontSize    = 10.0
	titleSize   = 14.0
)

// LabelSeparator joins window tokens in bar labels.
const LabelSeparator = " | "

var (
	backgroundColor = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	barColor        = drawing.Color{R: 78, G: 121, B: 167, A: 255}
	gridColor       = drawing.Color{R: 220, G: 220, B: 220, A: 255}
	axisColor       = drawing.Color{R: 80, G: 80, B: 80, A: 255}
	textColor       = drawing.Color{R: 30, G: 30, B: 30, A: 255}
)

// Options controls chart layout.
type Options struct {
	Format    Format
	Width     int
	BarHeight int
	MaxLabel  int
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.BarHeight <= 0 {
		o.BarHeight = DefaultBarHeight
	}
	if o.MaxLabel <= 0 {
		o.MaxLabel = DefaultMaxLabel
	}
	return o
}

// Renderer writes one chart per window length.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, r analyzer.LengthResult) error
	// Ext is the file extension of the produced images, without a dot.
	Ext() string
}

// NativeRenderer draws charts with go-chart's own PNG or SVG backend.
type NativeRenderer struct {
	opts Options
}

// NewNativeRenderer creates a renderer for PNG or SVG output.
func NewNativeRenderer(opts Options) (*NativeRenderer, error) {
	opts = opts.withDefaults()
	if opts.Format != FormatPNG && opts.Format != FormatSVG {
		return nil, fmt.Errorf("unsupported chart format %q", opts.Format)
	}
	return &NativeRenderer{opts: opts}, nil
}

// Render draws the recurring entries of r.
func (nr *NativeRenderer) Render(_ context.Context, w io.Writer, r analyzer.LengthResult) error {
	return Draw(w, r, nr.opts)
}

// Ext returns the configured format.
func (nr *NativeRenderer) Ext() string {
	return string(nr.opts.Format)
}

// Height returns the image height needed for n bars.
func Height(n int, opts Options) int {
	opts = opts.withDefaults()
	body := emptyHeight
	if n > 0 {
		body = n*(opts.BarHeight+barGap) + barGap
	}
	return padding + titleHeight + body + axisHeight + padding
}

// Draw renders the recurring entries of r as a horizontal bar chart.
func Draw(w io.Writer, r analyzer.LengthResult, opts Options) error {
	opts = opts.withDefaults()

	provider := gochart.PNG
	if opts.Format == FormatSVG {
		provider = gochart.SVG
	}

	entries := r.Recurring
	width, height := opts.Width, Height(len(entries), opts)

	rd, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("create %s renderer: %w", opts.Format, err)
	}

	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	rd.SetFont(font)

	text := func(s string) string {
		// go-chart writes SVG text verbatim.
		if opts.Format == FormatSVG {
			return html.EscapeString(s)
		}
		return s
	}

	fillRect(rd, 0, 0, width, height, backgroundColor)

	rd.SetFontColor(textColor)
	rd.SetFontSize(titleSize)
	title := fmt.Sprintf("Recurring instruction windows of length %d", r.WindowLength)
	rd.Text(text(title), padding, padding+titleHeight/2)

	rd.SetFontSize(fontSize)

	labels := make([]string, len(entries))
	labelWidth := 0
	for i, e := range entries {
		labels[i] = truncateLabel(strings.Join(e.Window, LabelSeparator), opts.MaxLabel)
		labelWidth = max(labelWidth, rd.MeasureText(labels[i]).Width())
	}
	labelWidth = min(labelWidth, width*45/100)

	plotLeft := padding + labelWidth + labelGap
	plotRight := width - padding - labelGap
	plotTop := padding + titleHeight
	plotBottom := height - padding - axisHeight

	maxCount := r.MaxCount()
	scale := func(count int) int {
		if maxCount == 0 {
			return plotLeft
		}
		return plotLeft + count*(plotRight-plotLeft)/maxCount
	}

	for _, tick := range Ticks(entries) {
		x := scale(tick)
		strokeLine(rd, x, plotTop, x, plotBottom, gridColor)

		label := strconv.Itoa(tick)
		box := rd.MeasureText(label)
		rd.SetFontColor(textColor)
		rd.Text(label, x-box.Width()/2, plotBottom+labelGap+box.Height())
	}

	if len(entries) == 0 {
		rd.SetFontColor(textColor)
		rd.Text("no recurring windows", plotLeft, plotTop+emptyHeight/2)
	}

	for i, e := range entries {
		top := plotTop + barGap + i*(opts.BarHeight+barGap)
		fillRect(rd, plotLeft, top, scale(e.Count), top+opts.BarHeight, barColor)

		box := rd.MeasureText(labels[i])
		rd.SetFontColor(textColor)
		rd.Text(text(labels[i]), plotLeft-labelGap-box.Width(), top+(opts.BarHeight+box.Height())/2)
	}

	strokeLine(rd, plotLeft, plotBottom, plotRight, plotBottom, axisColor)
	strokeLine(rd, plotLeft, plotTop, plotLeft, plotBottom, axisColor)

	if err := rd.Save(w); err != nil {
		return fmt.Errorf("save %s chart: %w", opts.Format, err)
	}
	return nil
}

// Ticks returns zero and every distinct count, ascending.
func Ticks(entries []analyzer.RankedEntry) []int {
	ticks := []int{0}
	for _, e := range entries {
		if !slices.Contains(ticks, e.Count) {
			ticks = append(ticks, e.Count)
		}
	}
	slices.Sort(ticks)
	return ticks
}

func truncateLabel(label string, maxRunes int) string {
	if utf8.RuneCountInString(label) <= maxRunes {
		return label
	}
	if maxRunes <= 3 {
		return string([]rune(label)[:maxRunes])
	}
	return string([]rune(label)[:maxRunes-3]) + "..."
}

func fillRect(rd gochart.Renderer, left, top, right, bottom int, c drawing.Color) {
	rd.SetFillColor(c)
	rd.SetStrokeColor(c)
	rd.SetStrokeWidth(0)
	rd.MoveTo(left, top)
	rd.LineTo(right, top)
	rd.LineTo(right, bottom)
	rd.LineTo(left, bottom)
	rd.Close()
	rd.Fill()
}

func strokeLine(rd gochart.Renderer, x1, y1, x2, y2 int, c drawing.Color) {
	rd.SetStrokeColor(c)
	rd.SetStrokeWidth(1)
	rd.MoveTo(x1, y1)
	rd.LineTo(x2, y2)
	rd.Stroke()
}
