package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/repository"
)

// Pacer supplies randomness and waiting to the pipeline. Tests swap in a
// zero-delay implementation.
type Pacer interface {
	// Between returns a uniformly distributed int in [lo, hi].
	Between(lo, hi int) int
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// RandomPacer is the production Pacer.
type RandomPacer struct{}

func (RandomPacer) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}

func (RandomPacer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pauseBetween sleeps a random number of milliseconds in [minMs, maxMs].
func pauseBetween(ctx context.Context, pacer Pacer, minMs, maxMs int) error {
	return pacer.Sleep(ctx, time.Duration(pacer.Between(minMs, maxMs))*time.Millisecond)
}

// Humanizer inserts pointer movement, scrolling and pauses between pipeline
// steps.
type Humanizer struct {
	pacer  Pacer
	logger *zap.Logger
}

func NewHumanizer(pacer Pacer, logger *zap.Logger) *Humanizer {
	return &Humanizer{pacer: pacer, logger: logger}
}

// Simulate moves the pointer somewhere inside the viewport, waits 300-800ms,
// scrolls down 100-400px and waits 500-1000ms. Pointer and scroll failures
// only cost the gesture; a cancelled context is returned.
func (h *Humanizer) Simulate(ctx context.Context, page repository.Page) error {
	width, height := page.Viewport()
	x := h.pacer.Between(0, width)
	y := h.pacer.Between(0, height)
	if err := page.MouseMove(ctx, x, y); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger.Debug("pointer move failed", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
	}

	if err := pauseBetween(ctx, h.pacer, 300, 800); err != nil {
		return err
	}

	dy := h.pacer.Between(100, 400)
	if err := page.ScrollBy(ctx, dy); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger.Debug("scroll failed", zap.Int("dy", dy), zap.Error(err))
	}

	return pauseBetween(ctx, h.pacer, 500, 1000)
}
