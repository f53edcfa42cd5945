package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// DefaultChromeTimeout bounds a single rasterization.
const DefaultChromeTimeout = 30 * time.Second

// ChromeRenderer draws the chart as SVG and screenshots it in headless Chrome.
type ChromeRenderer struct {
	opts      Options
	timeout   time.Duration
	allocOpts []chromedp.ExecAllocatorOption
}

// NewChromeRenderer creates a PNG renderer backed by headless Chrome. An empty
// execPath lets chromedp locate the browser.
func NewChromeRenderer(opts Options, execPath string, timeout time.Duration) *ChromeRenderer {
	opts = opts.withDefaults()
	if timeout <= 0 {
		timeout = DefaultChromeTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	return &ChromeRenderer{opts: opts, timeout: timeout, allocOpts: allocOpts}
}

// Ext always returns png.
func (cr *ChromeRenderer) Ext() string {
	return string(FormatPNG)
}

// Render rasterizes the chart for r into w.
func (cr *ChromeRenderer) Render(ctx context.Context, w io.Writer, r analyzer.LengthResult) error {
	opts := cr.opts
	opts.Format = FormatSVG

	var svg bytes.Buffer
	if err := Draw(&svg, r, opts); err != nil {
		return err
	}

	png, err := cr.rasterize(ctx, svg.String(), opts.Width, Height(len(r.Recurring), opts))
	if err != nil {
		return fmt.Errorf("rasterize chart for length %d: %w", r.WindowLength, err)
	}

	_, err = w.Write(png)
	return err
}

func (cr *ChromeRenderer) rasterize(ctx context.Context, svg string, width, height int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cr.timeout)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, cr.allocOpts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	document := svgPage(svg)

	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// svgPage wraps an SVG document in a margin-free HTML page.
func svgPage(svg string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>" +
		"html,body{margin:0;padding:0;background:#fff;overflow:hidden}svg{display:block}" +
		"</style></head><body>" + svg + "</body></html>"
}
