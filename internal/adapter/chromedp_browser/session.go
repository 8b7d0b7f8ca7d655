package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/repository"
)

const pingTimeout = 2 * time.Second

type session struct {
	id          string
	profile     Profile
	width       int
	height      int
	browserCtx  context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger

	// mu serializes tab creation; chromedp attaches targets one at a time.
	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (s *session) ID() string { return s.id }

func (s *session) NewPage(ctx context.Context) (repository.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("session %s closed: %w", s.id, err)
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx, stealthTasks(s.profile, s.width, s.height))
	if !stop() {
		return nil, fmt.Errorf("open tab: %w", ctx.Err())
	}
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return newPage(tabCtx, tabCancel, s.width, s.height), nil
}

// Connected asks the browser for its version. Any failure counts as lost.
func (s *session) Connected(ctx context.Context) bool {
	if s.browserCtx.Err() != nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(s.browserCtx, pingTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(pingCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, _, _, _, err := browser.GetVersion().Do(ctx)
		return err
	}))
	if err != nil {
		s.logger.Debug("browser ping failed", zap.Error(err))
		return false
	}
	return true
}

// Close shuts the browser down and releases the allocator. Repeated calls
// return the first result.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
		s.allocCancel()
	})
	return s.closeErr
}

var _ repository.Session = (*session)(nil)
