package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPacer struct {
	ranges [][2]int
	sleeps []time.Duration
}

func (p *recordingPacer) Between(lo, hi int) int {
	p.ranges = append(p.ranges, [2]int{lo, hi})
	return hi
}

func (p *recordingPacer) Sleep(ctx context.Context, d time.Duration) error {
	p.sleeps = append(p.sleeps, d)
	return ctx.Err()
}

func TestHumanizerSimulate(t *testing.T) {
	pacer := &recordingPacer{}
	h := NewHumanizer(pacer, zap.NewNop())

	// The fake page fails every scroll; that must not surface.
	require.NoError(t, h.Simulate(context.Background(), &fakePage{}))

	assert.Equal(t, [][2]int{{0, 1280}, {0, 720}, {300, 800}, {100, 400}, {500, 1000}}, pacer.ranges)
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 1000 * time.Millisecond}, pacer.sleeps)
}

func TestHumanizerSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHumanizer(&recordingPacer{}, zap.NewNop()).Simulate(ctx, &fakePage{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomPacerBetween(t *testing.T) {
	var p RandomPacer
	for range 200 {
		v := p.Between(300, 800)
		assert.GreaterOrEqual(t, v, 300)
		assert.LessOrEqual(t, v, 800)
	}
	assert.Equal(t, 5, p.Between(5, 5))
}

func TestRandomPacerSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := RandomPacer{}.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
