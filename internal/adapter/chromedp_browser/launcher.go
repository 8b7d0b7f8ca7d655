package chromedp_browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/repository"
)

// LaunchConfig describes how browser processes are started.
type LaunchConfig struct {
	ChromePath string // empty uses chromedp's lookup
	Headless   bool
	Width      int
	Height     int
}

// Launcher starts stealth-configured Chrome processes. It implements
// repository.BrowserRepository.
type Launcher struct {
	cfg     LaunchConfig
	rotator *ProfileRotator
	logger  *zap.Logger
}

// NewLauncher creates a new Launcher. Zero viewport dimensions default to 1280x720.
func NewLauncher(cfg LaunchConfig, rotator *ProfileRotator, logger *zap.Logger) *Launcher {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	return &Launcher{cfg: cfg, rotator: rotator, logger: logger}
}

func (l *Launcher) allocatorOptions(profile Profile) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("no-zygote", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("lang", "es-ES"),
		chromedp.UserAgent(profile.UserAgent),
		chromedp.WindowSize(l.cfg.Width, l.cfg.Height),
	)
	if l.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ChromePath))
	}
	if profile.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(profile.Proxy))
	}
	return opts
}

// Launch starts a browser and waits until it accepts commands. ctx bounds only
// the startup; the returned session lives until it is closed.
func (l *Launcher) Launch(ctx context.Context) (repository.Session, error) {
	id := uuid.NewString()
	profile := l.rotator.Next()
	log := l.logger.With(zap.String("session_id", id))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(profile)...)

	sugar := log.Sugar()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	// The first Run starts the process and must not carry a deadline, so the
	// caller's ctx is linked by cancellation only.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	if !stop() {
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", ctx.Err())
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	log.Debug("chrome started", zap.String("user_agent", profile.UserAgent), zap.Bool("proxied", profile.Proxy != ""))
	return &session{
		id:          id,
		profile:     profile,
		width:       l.cfg.Width,
		height:      l.cfg.Height,
		browserCtx:  browserCtx,
		allocCancel: allocCancel,
		logger:      log,
	}, nil
}

var _ repository.BrowserRepository = (*Launcher)(nil)
