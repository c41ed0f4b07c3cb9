package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.PageFetcher = (*RodFetcher)(nil)

type RodConfig struct {
	Headless    bool
	PageTimeout time.Duration
	Logger      output.LoggerPort
}

func DefaultRodConfig() RodConfig {
	return RodConfig{
		Headless:    true,
		PageTimeout: 30 * time.Second,
	}
}

// RodFetcher renders pages in a shared Chrome instance. Chrome is launched on the
// first Fetch and lives until Close.
type RodFetcher struct {
	cfg RodConfig

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewRodFetcher(cfg RodConfig) *RodFetcher {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultRodConfig().PageTimeout
	}
	return &RodFetcher{cfg: cfg}
}

func (f *RodFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().
		Headless(f.cfg.Headless).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-gpu")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	if f.cfg.Logger != nil {
		f.cfg.Logger.Info("Browser started", "headless", f.cfg.Headless)
	}
	f.browser = b
	f.launcher = l
	return b, nil
}

func (f *RodFetcher) Fetch(ctx context.Context, url string) (string, error) {
	b, err := f.connect()
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrUpstream, err)
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("%w: open page: %w", entity.ErrUpstream, err)
	}
	defer func() { _ = page.Close() }()

	page = page.Timeout(f.cfg.PageTimeout)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: UserAgent}); err != nil {
		return "", fmt.Errorf("%w: set user agent: %w", entity.ErrUpstream, err)
	}
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("%w: navigate %s: %w", entity.ErrUpstream, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: load %s: %w", entity.ErrUpstream, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", entity.ErrUpstream, url, err)
	}

	if f.cfg.Logger != nil {
		f.cfg.Logger.Debug("Page rendered", "url", url, "bytes", len(html))
	}
	return html, nil
}

// Close shuts the browser down and kills the Chrome process.
func (f *RodFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		_ = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher.Cleanup()
		f.launcher = nil
	}
}
