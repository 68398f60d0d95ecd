package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starford/ncdash/internal/apperr"
)

// Axis is the dimension an Animator steps through.
type Axis string

const (
	AxisTime  Axis = "time"
	AxisDepth Axis = "depth"
)

// DefaultFrameInterval is the playback step.
const DefaultFrameInterval = 500 * time.Millisecond

// FrameFunc is called with every index the animator moves to.
type FrameFunc func(ctx context.Context, index int)

// Animator steps an index through [0, count) on one axis. Play advances one
// step per interval and pauses at the last index.
type Animator struct {
	axis     Axis
	max      int
	interval time.Duration
	onFrame  FrameFunc

	mu      sync.Mutex
	index   int
	playing bool
	stop    chan struct{}
	done    chan struct{}
}

// NewAnimator creates a paused animator at index 0. count is the size of the
// axis dimension.
func NewAnimator(axis Axis, count int, interval time.Duration, onFrame FrameFunc) (*Animator, error) {
	if axis != AxisTime && axis != AxisDepth {
		return nil, fmt.Errorf("dashboard: animator axis %q: %w", axis, apperr.ErrInvalidRequest)
	}
	if count <= 0 {
		return nil, fmt.Errorf("dashboard: animator over empty %s dimension: %w", axis, apperr.ErrInvalidRequest)
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Animator{axis: axis, max: count - 1, interval: interval, onFrame: onFrame}, nil
}

// Axis returns the animated axis.
func (a *Animator) Axis() Axis { return a.axis }

// Index returns the current index.
func (a *Animator) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Playing reports whether playback is running.
func (a *Animator) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// Play starts playback and returns a channel closed when it stops, either at
// the last index, on Pause, or when ctx is done. An axis of size one never
// plays.
func (a *Animator) Play(ctx context.Context) <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return a.done
	}
	done := make(chan struct{})
	if a.max <= 0 {
		close(done)
		return done
	}
	a.playing = true
	a.stop = make(chan struct{})
	a.done = done
	go a.run(ctx, a.stop, done)
	return done
}

func (a *Animator) run(ctx context.Context, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			a.halt()
			return
		case <-stop:
			return
		case <-t.C:
			a.mu.Lock()
			if a.index >= a.max {
				a.playing = false
				a.mu.Unlock()
				return
			}
			a.index++
			idx := a.index
			a.mu.Unlock()
			a.emit(ctx, idx)
		}
	}
}

func (a *Animator) halt() {
	a.mu.Lock()
	a.playing = false
	a.mu.Unlock()
}

// Pause stops playback, keeping the index.
func (a *Animator) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		return
	}
	a.playing = false
	close(a.stop)
}

// Next moves one step forward, clamped to the last index.
func (a *Animator) Next(ctx context.Context) int {
	return a.seek(ctx, func(i int) int { return min(i+1, a.max) })
}

// Prev moves one step back, clamped to zero.
func (a *Animator) Prev(ctx context.Context) int {
	return a.seek(ctx, func(i int) int { return max(i-1, 0) })
}

// Start jumps to index zero.
func (a *Animator) Start(ctx context.Context) int { return a.seek(ctx, func(int) int { return 0 }) }

// End jumps to the last index.
func (a *Animator) End(ctx context.Context) int { return a.seek(ctx, func(int) int { return a.max }) }

func (a *Animator) seek(ctx context.Context, move func(int) int) int {
	a.mu.Lock()
	prev := a.index
	a.index = move(a.index)
	idx := a.index
	a.mu.Unlock()
	if idx != prev {
		a.emit(ctx, idx)
	}
	return idx
}

func (a *Animator) emit(ctx context.Context, idx int) {
	if a.onFrame != nil {
		a.onFrame(ctx, idx)
	}
}
