package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAnimatorPlaysToEnd(t *testing.T) {
	var mu sync.Mutex
	var frames []int
	a, err := NewAnimator(AxisTime, 4, 5*time.Millisecond, func(_ context.Context, i int) {
		mu.Lock()
		frames = append(frames, i)
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-a.Play(context.Background()):
	case <-time.After(2 * time.Second):
		t.Fatal("animation did not stop at the end")
	}
	if a.Playing() {
		t.Error("still playing after end")
	}
	if a.Index() != 3 {
		t.Errorf("index = %d, want 3", a.Index())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(frames) != 3 || frames[0] != 1 || frames[2] != 3 {
		t.Errorf("frames = %v, want [1 2 3]", frames)
	}
}

func TestAnimatorPause(t *testing.T) {
	a, _ := NewAnimator(AxisDepth, 1000, 5*time.Millisecond, nil)
	done := a.Play(context.Background())
	time.Sleep(30 * time.Millisecond)
	a.Pause()
	<-done
	idx := a.Index()
	time.Sleep(30 * time.Millisecond)
	if a.Index() != idx {
		t.Error("index moved after pause")
	}
	if idx == 0 || idx == 999 {
		t.Errorf("index = %d, want mid-range", idx)
	}
}

func TestAnimatorStepsClamp(t *testing.T) {
	ctx := context.Background()
	var calls int
	a, _ := NewAnimator(AxisTime, 3, 0, func(context.Context, int) { calls++ })

	if got := a.Prev(ctx); got != 0 {
		t.Errorf("Prev at start = %d, want 0", got)
	}
	if got := a.End(ctx); got != 2 {
		t.Errorf("End = %d, want 2", got)
	}
	if got := a.Next(ctx); got != 2 {
		t.Errorf("Next at end = %d, want 2", got)
	}
	if got := a.Start(ctx); got != 0 {
		t.Errorf("Start = %d, want 0", got)
	}
	if calls != 2 {
		t.Errorf("frame callbacks = %d, want 2", calls)
	}
}

func TestAnimatorSingleFrameNeverPlays(t *testing.T) {
	a, _ := NewAnimator(AxisTime, 1, time.Millisecond, nil)
	<-a.Play(context.Background())
	if a.Playing() {
		t.Error("single-frame animator playing")
	}
}

func TestAnimatorRejectsBadAxis(t *testing.T) {
	if _, err := NewAnimator("lat", 3, 0, nil); err == nil {
		t.Error("expected error for unknown axis")
	}
	if _, err := NewAnimator(AxisTime, 0, 0, nil); err == nil {
		t.Error("expected error for empty dimension")
	}
}
