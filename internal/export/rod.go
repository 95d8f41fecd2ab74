package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/render"
)

// PixelRatio is the device scale factor of exported images.
const PixelRatio = 2

// RodRasterizer screenshots reels in headless Chromium. The browser is
// launched on first use and reused until Close.
type RodRasterizer struct {
	// Timeout bounds one rasterization. Zero means 30s.
	Timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodRasterizer returns a rasterizer that launches its browser lazily.
func NewRodRasterizer() *RodRasterizer {
	return &RodRasterizer{Timeout: 30 * time.Second}
}

func (r *RodRasterizer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.launcher = l
	r.browser = b
	return b, nil
}

// Rasterize renders reel to HTML, lets its animations finish and captures
// the reel box as PNG at PixelRatio density.
func (r *RodRasterizer) Rasterize(ctx context.Context, reel model.Reel, opts render.Options) (png []byte, err error) {
	doc, err := render.HTML(reel, opts)
	if err != nil {
		return nil, err
	}
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := newPage(b)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	page = page.Context(ctx).Timeout(timeout)

	if opts.Ratio.Width == 0 {
		opts.Ratio = render.DefaultOptions().Ratio
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Ratio.Width,
		Height:            opts.Ratio.Height,
		DeviceScaleFactor: PixelRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("load reel: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	settle := time.Duration(render.AnimationDuration(reel)*float64(time.Second)) + 100*time.Millisecond
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(settle):
	}

	el, err := page.Element(render.ReelSelector)
	if err != nil {
		return nil, fmt.Errorf("find reel: %w", err)
	}
	png, err = el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}

// newPage opens a blank page, turning rod's panics into errors.
func newPage(b *rod.Browser) (page *rod.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("create page: %v", rec)
		}
	}()
	page = b.MustPage()
	if page == nil {
		return nil, fmt.Errorf("create page: no page")
	}
	return page, nil
}

// Close shuts down the browser if it was started.
func (r *RodRasterizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Cleanup()
		r.launcher = nil
	}
}
