// Package capture implements snapshot acquisition with a headless Chrome
// driven by chromedp. One browser context is opened per analysis run and
// released when the run's session closes.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jonboulle/clockwork"

	"github.com/rainalert/radar-monitor/internal/domain"
	"github.com/rainalert/radar-monitor/internal/orchestrator"
)

// Config holds browser and archive settings.
type Config struct {
	// Timeout bounds a single provider's navigate-settle-screenshot
	// sequence, excluding the provider's own SettleWait.
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	ScreenshotDir  string
}

// Opener implements orchestrator.SnapshotOpener with headless Chrome.
type Opener struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewOpener creates an Opener, ensuring the screenshot archive directory
// exists.
func NewOpener(cfg Config, clock clockwork.Clock, logger *slog.Logger) (*Opener, error) {
	if err := os.MkdirAll(cfg.ScreenshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	return &Opener{cfg: cfg, logger: logger, clock: clock}, nil
}

// Open launches a browser and returns a session scoped to one run. The
// launch is eager so a missing or broken Chrome fails the run up front
// instead of on the first capture.
func (o *Opener) Open(ctx context.Context) (orchestrator.SnapshotSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.WindowSize(o.cfg.ViewportWidth, o.cfg.ViewportHeight),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	o.logger.Debug("browser session opened",
		"viewport_width", o.cfg.ViewportWidth,
		"viewport_height", o.cfg.ViewportHeight,
	)
	return &session{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		cfg:    o.cfg,
		logger: o.logger,
		clock:  o.clock,
	}, nil
}

type session struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	cfg        Config
	logger     *slog.Logger
	clock      clockwork.Clock
}

// Capture navigates a fresh tab to the provider's map, waits for the radar
// overlay to settle, screenshots the viewport, archives the PNG, and
// decodes it for classification.
func (s *session) Capture(ctx context.Context, p domain.Provider) (domain.Snapshot, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	timeout := s.cfg.Timeout + p.SettleWait
	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	// Honor the caller's cancellation as well as the capture budget.
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(p.URL),
		chromedp.Sleep(p.SettleWait),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("capture %s: %w", p.URL, err)
	}

	stamp := s.clock.Now().Format("20060102_150405")
	path := filepath.Join(s.cfg.ScreenshotDir, fmt.Sprintf("%s_%s.png", p.ID, stamp))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return domain.Snapshot{}, fmt.Errorf("archive screenshot: %w", err)
	}
	s.logger.Info("screenshot saved", "provider", p.ID, "path", path, "bytes", len(buf))

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return domain.Snapshot{}, &domain.ImageLoadError{Source: path, Cause: err}
	}
	return domain.Snapshot{Image: img, Path: path}, nil
}

func (s *session) Close() error {
	s.cancel()
	return nil
}
