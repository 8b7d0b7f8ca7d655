package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/repository"
	"github.com/user/lens-lookup-service/pkg/metrics"
)

// SessionProvider hands out pages either from a browser launched for each
// request or from one shared browser.
type SessionProvider struct {
	browser repository.BrowserRepository
	shared  bool
	logger  *zap.Logger
	metrics *metrics.Metrics

	// mu guards session and serializes page creation on it.
	mu      sync.Mutex
	session repository.Session
}

func NewSessionProvider(browser repository.BrowserRepository, shared bool, logger *zap.Logger, m *metrics.Metrics) *SessionProvider {
	return &SessionProvider{browser: browser, shared: shared, logger: logger, metrics: m}
}

// Acquire returns a ready page and a release func. The release func must be
// called exactly once, on success and failure alike.
func (p *SessionProvider) Acquire(ctx context.Context) (repository.Page, func(), error) {
	if p.shared {
		return p.acquireShared(ctx)
	}
	return p.acquireExclusive(ctx)
}

func (p *SessionProvider) acquireExclusive(ctx context.Context) (repository.Page, func(), error) {
	session, err := p.launch(ctx)
	if err != nil {
		return nil, nil, err
	}

	page, err := session.NewPage(ctx)
	if err != nil {
		p.closeSession(session)
		return nil, nil, fmt.Errorf("%w: open page: %w", entity.ErrSessionLaunch, err)
	}

	release := func() {
		if err := page.Close(); err != nil {
			p.logger.Debug("page close failed", zap.String("session_id", session.ID()), zap.Error(err))
		}
		p.closeSession(session)
	}
	return page, release, nil
}

func (p *SessionProvider) acquireShared(ctx context.Context) (repository.Page, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A caller that has given up must not judge the shared session for others.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if p.session != nil && !p.session.Connected(context.WithoutCancel(ctx)) {
		p.logger.Warn("shared browser session lost, discarding", zap.String("session_id", p.session.ID()))
		p.closeSession(p.session)
		p.session = nil
	}
	if p.session == nil {
		session, err := p.launch(ctx)
		if err != nil {
			return nil, nil, err
		}
		p.session = session
	}

	page, err := p.session.NewPage(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		p.closeSession(p.session)
		p.session = nil
		return nil, nil, fmt.Errorf("%w: open page: %w", entity.ErrSessionLaunch, err)
	}

	sessionID := p.session.ID()
	release := func() {
		if err := page.Close(); err != nil {
			p.logger.Debug("page close failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return page, release, nil
}

// Release closes the shared session if one is held. It is safe to call
// repeatedly and reports whether a session was closed.
func (p *SessionProvider) Release(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return false, nil
	}
	session := p.session
	p.session = nil
	err := session.Close()
	p.metrics.SessionsActive.Dec()
	if err != nil {
		return true, fmt.Errorf("close session %s: %w", session.ID(), err)
	}
	p.logger.Info("browser session released", zap.String("session_id", session.ID()))
	return true, nil
}

func (p *SessionProvider) launch(ctx context.Context) (repository.Session, error) {
	session, err := p.browser.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSessionLaunch, err)
	}
	p.metrics.SessionsActive.Inc()
	p.logger.Info("browser session launched", zap.String("session_id", session.ID()), zap.Bool("shared", p.shared))
	return session, nil
}

func (p *SessionProvider) closeSession(session repository.Session) {
	if err := session.Close(); err != nil {
		p.logger.Warn("browser session close failed", zap.String("session_id", session.ID()), zap.Error(err))
	}
	p.metrics.SessionsActive.Dec()
}
