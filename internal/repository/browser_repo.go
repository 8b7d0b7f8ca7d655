package repository

import (
	"context"
	"errors"
	"time"
)

// ErrElementMissing is returned by Page.InjectValue when the selector matched nothing.
var ErrElementMissing = errors.New("element missing")

// InputEvent is a DOM event dispatched on an element after its value is set.
type InputEvent string

const (
	EventInput     InputEvent = "input"
	EventChange    InputEvent = "change"
	EventEnterDown InputEvent = "keydown:Enter"
	EventEnterUp   InputEvent = "keyup:Enter"
)

// BrowserRepository launches stealth-configured browser sessions.
type BrowserRepository interface {
	// Launch starts a new browser process and returns its session handle.
	Launch(ctx context.Context) (Session, error)
}

// Session is one live browser process. It may hold several pages.
type Session interface {
	ID() string
	// NewPage opens a tab with the session's fingerprint setup applied.
	NewPage(ctx context.Context) (Page, error)
	// Connected reports whether the browser still answers.
	Connected(ctx context.Context) bool
	Close() error
}

// Page is the capability surface the pipeline drives. Selectors are plain CSS.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// ClickAndWaitNavigation clicks and waits for the navigation the click causes.
	ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error
	// ClickIfDisplayed clicks the element only when it exists and is displayed.
	ClickIfDisplayed(ctx context.Context, selector string) (bool, error)
	// InjectValue replaces the element's value and dispatches the given events.
	InjectValue(ctx context.Context, selector, value string, events ...InputEvent) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Viewport() (width, height int)
	MouseMove(ctx context.Context, x, y int) error
	ScrollBy(ctx context.Context, dy int) error
	Close() error
}
