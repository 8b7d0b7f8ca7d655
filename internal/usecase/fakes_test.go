package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/repository"
	"github.com/user/lens-lookup-service/pkg/metrics"
)

const (
	testResultURL  = "https://www.google.com/search?tbs=sbi:abc"
	testRefinedURL = "https://www.google.com/search?q=Discogs&tbs=sbi:abc"
	testReleaseURL = "https://www.discogs.com/release/123-Artist-Album"
	testImage      = "data:image/png;base64,iVBORw0KGgo="
)

const testResultsHTML = `<html><body>
<div class="g"><a href="https://www.discogs.com/release/123-Artist-Album">Artist - Album</a></div>
<div class="g"><a href="https://example.com/other">Elsewhere</a></div>
</body></html>`

var errBoom = errors.New("boom")

// instantPacer never sleeps and always picks the lower bound.
type instantPacer struct{}

func (instantPacer) Between(lo, _ int) int { return lo }

func (instantPacer) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// fakePage is a scripted repository.Page. Maps are keyed by URL or selector.
type fakePage struct {
	mu sync.Mutex

	current string
	html    string

	navigateErr map[string]error
	waitErr     map[string]error
	injectErr   map[string]error
	submitErr   map[string]error
	titleErr    map[string]error
	navTargets  map[string]string // selector -> URL reached by clicking it
	titles      map[string]string
	consentErr  error

	// entered receives on each Navigate; gate holds Navigate until closed.
	entered chan struct{}
	gate    chan struct{}

	visited  []string
	injected map[string]string
	closed   int
}

func newScriptedPage() *fakePage {
	prof := entity.DefaultSiteProfile()
	return &fakePage{
		html: testResultsHTML,
		navTargets: map[string]string{
			prof.ImageSubmit:         testResultURL,
			prof.RefinedSearchSubmit: testRefinedURL,
		},
		titles: map[string]string{
			testReleaseURL: `"Artist" - Album [Deluxe], 2020 | Discogs`,
		},
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if p.entered != nil {
		select {
		case p.entered <- struct{}{}:
		default:
		}
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.visited = append(p.visited, url)
	if err := p.navigateErr[url]; err != nil {
		return err
	}
	p.current = url
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.waitErr[selector]
}

func (p *fakePage) Click(ctx context.Context, _ string, _ time.Duration) error {
	return ctx.Err()
}

func (p *fakePage) ClickAndWaitNavigation(ctx context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.submitErr[selector]; err != nil {
		return err
	}
	if target, ok := p.navTargets[selector]; ok {
		p.current = target
	}
	return nil
}

func (p *fakePage) ClickIfDisplayed(_ context.Context, _ string) (bool, error) {
	if p.consentErr != nil {
		return false, p.consentErr
	}
	return true, nil
}

func (p *fakePage) InjectValue(ctx context.Context, selector, value string, _ ...repository.InputEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.injectErr[selector]; err != nil {
		return err
	}
	if p.injected == nil {
		p.injected = make(map[string]string)
	}
	p.injected[selector] = value
	return nil
}

func (p *fakePage) Title(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.titleErr[p.current]; err != nil {
		return "", err
	}
	return p.titles[p.current], nil
}

func (p *fakePage) URL(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *fakePage) HTML(_ context.Context) (string, error) {
	return p.html, nil
}

func (p *fakePage) Viewport() (int, int) { return 1280, 720 }

func (p *fakePage) MouseMove(ctx context.Context, _, _ int) error { return ctx.Err() }

func (p *fakePage) ScrollBy(_ context.Context, _ int) error { return errBoom }

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakeSession struct {
	mu        sync.Mutex
	id        string
	newPage   func() *fakePage
	pages     []*fakePage
	pageErr   error
	connected bool
	closed    int
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) NewPage(ctx context.Context) (repository.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	page := s.newPage()
	s.pages = append(s.pages, page)
	return page, nil
}

// Connected fails on a done context, as the chromedp version check does.
func (s *fakeSession) Connected(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ctx.Err() == nil && s.connected && s.closed == 0
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeBrowser launches fakeSessions whose pages come from newPage.
type fakeBrowser struct {
	mu        sync.Mutex
	newPage   func() *fakePage
	launchErr error
	pageErr   error
	sessions  []*fakeSession
}

func newFakeBrowser(newPage func() *fakePage) *fakeBrowser {
	return &fakeBrowser{newPage: newPage}
}

func (b *fakeBrowser) Launch(_ context.Context) (repository.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	s := &fakeSession{
		id:        fmt.Sprintf("session-%d", len(b.sessions)+1),
		newPage:   b.newPage,
		pageErr:   b.pageErr,
		connected: true,
	}
	b.sessions = append(b.sessions, s)
	return s, nil
}

func (b *fakeBrowser) launches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *fakeBrowser) session(t *testing.T, i int) *fakeSession {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.sessions) {
		t.Fatalf("session %d was never launched", i)
	}
	return b.sessions[i]
}

func newTestPipeline(m *metrics.Metrics) *NavigationPipeline {
	pacer := instantPacer{}
	logger := zap.NewNop()
	return NewNavigationPipeline(entity.DefaultSiteProfile(), NewHumanizer(pacer, logger), pacer, logger, m)
}
