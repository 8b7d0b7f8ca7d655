package chromedp_browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/errgroup"

	"github.com/user/lens-lookup-service/internal/repository"
)

// readTimeout bounds actions that have no caller-supplied timeout.
const readTimeout = 10 * time.Second

// chromeErrorPrefix is the URL Chrome shows when a document failed to load.
const chromeErrorPrefix = "chrome-error://"

const clickIfDisplayedJS = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.display === 'none' || style.visibility === 'hidden' || el.offsetParent === null) return false;
	el.click();
	return true;
})(%s)`

const injectValueJS = `(function(sel, value, events) {
	const el = document.querySelector(sel);
	if (!el) return false;
	el.focus();
	el.value = '';
	el.value = value;
	for (const ev of events) {
		const [type, key] = ev.split(':');
		if (key) {
			el.dispatchEvent(new KeyboardEvent(type, { key: key, code: key, keyCode: 13, which: 13, bubbles: true }));
		} else {
			el.dispatchEvent(new Event(type, { bubbles: true }));
		}
	}
	return true;
})(%s, %s, %s)`

type chromePage struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	width     int
	height    int
	closeOnce sync.Once
	closeErr  error
}

func newPage(tabCtx context.Context, tabCancel context.CancelFunc, width, height int) *chromePage {
	return &chromePage{tabCtx: tabCtx, tabCancel: tabCancel, width: width, height: height}
}

// scope derives a context for one action: bounded by timeout, and cancelled
// when the caller's ctx is.
func (p *chromePage) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(p.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := p.scope(ctx, timeout)
	defer cancel()
	return callerErr(ctx, chromedp.Run(runCtx, actions...))
}

// callerErr prefers the caller's cancellation over the error it caused.
func callerErr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate returns once the new document fires DOMContentLoaded; images and
// third-party frames may still be loading.
func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	target, err := json.Marshal(url)
	if err != nil {
		return err
	}
	assign := chromedp.Evaluate(fmt.Sprintf("window.location.assign(%s)", target), nil)
	if err := p.triggerAndWaitLoaded(ctx, timeout, assign); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	var location string
	if err := p.run(ctx, readTimeout, chromedp.Location(&location)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if strings.HasPrefix(location, chromeErrorPrefix) {
		return fmt.Errorf("navigate to %s: browser error page", url)
	}
	return nil
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s not visible within %s", repository.ErrElementMissing, selector, timeout)
	}
	return err
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// ClickAndWaitNavigation clicks selector and waits for the document it opens.
func (p *chromePage) ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error {
	return p.triggerAndWaitLoaded(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// triggerAndWaitLoaded listens for the next DOMContentLoaded before running
// trigger so a fast navigation can't be missed.
func (p *chromePage) triggerAndWaitLoaded(ctx context.Context, timeout time.Duration, trigger chromedp.Action) error {
	runCtx, cancel := p.scope(ctx, timeout)
	defer cancel()

	loaded := make(chan struct{}, 1)
	chromedp.ListenTarget(runCtx, func(ev any) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		select {
		case <-loaded:
			return nil
		case <-gctx.Done():
			return fmt.Errorf("wait for navigation: %w", gctx.Err())
		}
	})
	g.Go(func() error {
		return chromedp.Run(gctx, trigger)
	})
	return callerErr(ctx, g.Wait())
}

func (p *chromePage) ClickIfDisplayed(ctx context.Context, selector string) (bool, error) {
	arg, err := json.Marshal(selector)
	if err != nil {
		return false, err
	}
	var clicked bool
	err = p.run(ctx, readTimeout, chromedp.Evaluate(fmt.Sprintf(clickIfDisplayedJS, arg), &clicked))
	return clicked, err
}

func (p *chromePage) InjectValue(ctx context.Context, selector, value string, events ...repository.InputEvent) error {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = string(ev)
	}
	selArg, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	valueArg, err := json.Marshal(value)
	if err != nil {
		return err
	}
	eventsArg, err := json.Marshal(names)
	if err != nil {
		return err
	}

	var found bool
	script := fmt.Sprintf(injectValueJS, selArg, valueArg, eventsArg)
	if err := p.run(ctx, readTimeout, chromedp.Evaluate(script, &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", repository.ErrElementMissing, selector)
	}
	return nil
}

func (p *chromePage) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, readTimeout, chromedp.Title(&title))
	return title, err
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var location string
	err := p.run(ctx, readTimeout, chromedp.Location(&location))
	return location, err
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, readTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Viewport() (int, int) {
	return p.width, p.height
}

func (p *chromePage) MouseMove(ctx context.Context, x, y int) error {
	return p.run(ctx, readTimeout, chromedp.MouseEvent(input.MouseMoved, float64(x), float64(y)))
}

func (p *chromePage) ScrollBy(ctx context.Context, dy int) error {
	return p.run(ctx, readTimeout, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy), nil))
}

// Close closes the tab. The browser stays up.
func (p *chromePage) Close() error {
	p.closeOnce.Do(func() {
		if err := chromedp.Cancel(p.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			p.closeErr = err
		}
		p.tabCancel()
	})
	return p.closeErr
}

var _ repository.Page = (*chromePage)(nil)
