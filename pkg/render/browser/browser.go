// Package browser rasterizes the interactive HTML page in headless Chrome,
// so PNG output shows exactly what the page shows: the centered viewport with
// connectors drawn by the page's own script.
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/reftree/pkg/buildinfo"
)

// DefaultTimeout bounds a single screenshot.
const DefaultTimeout = 30 * time.Second

// ErrEmptyScreenshot is returned when Chrome produced no image.
var ErrEmptyScreenshot = errors.New("screenshot buffer is empty")

// Options configures [Screenshot].
type Options struct {
	// ExecPath overrides Chrome discovery.
	ExecPath string
	// Selector is the element to capture. Defaults to the pan viewport.
	Selector string
	// Scale is the device scale factor. Defaults to 2.
	Scale float64
	// Width and Height size the browser window. They default to 1600×1200
	// and should be at least as large as the captured element.
	Width, Height int
	Timeout       time.Duration
}

func (o *Options) setDefaults() {
	if o.Selector == "" {
		o.Selector = ".referral__grid-wrap"
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	if o.Width <= 0 {
		o.Width = 1600
	}
	if o.Height <= 0 {
		o.Height = 1200
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}

// Screenshot loads page as a data URI and captures the selected element as PNG.
func Screenshot(ctx context.Context, page []byte, opts Options) ([]byte, error) {
	opts.setDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.UserAgent(buildinfo.UserAgent()),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(page)

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height), chromedp.EmulateScale(opts.Scale)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(opts.Selector, chromedp.ByQuery),
		chromedp.Screenshot(opts.Selector, &buf, chromedp.ByQuery),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(buf) == 0 {
		return nil, ErrEmptyScreenshot
	}
	return buf, nil
}

// Available reports whether a Chrome or Chromium binary can be found.
func Available() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
