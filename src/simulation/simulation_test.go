package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"lifegrid/src/universe"
)

func newTestOptions(pattern string) *Options {
	o := DefaultOptions
	o.Width = 20
	o.Height = 20
	o.Interval = 0
	o.Pattern = pattern
	o.Seed = 1
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &o
}

//start creates a simulation and runs its main loop until the test ends
func start(t *testing.T, o *Options) (*Simulation, chan Status) {
	t.Helper()
	stateCh := make(chan Status, 10)
	s, err := New(o, stateCh)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- s.Serve(context.Background()) }()
	t.Cleanup(func() {
		s.Close()
		<-served
	})
	return s, stateCh
}

func waitFor(t *testing.T, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v", mode)
		}
	}
}

func waitFrame(t *testing.T, s *Simulation, cond func(f Frame) bool) Frame {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if f := s.Frame(); cond(f) {
			return f
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for frame")
	return Frame{}
}

func TestStep(t *testing.T) {
	s, stateCh := start(t, newTestOptions("glider"))
	if got := s.Frame().LiveCells(); got != 5 {
		t.Fatalf("initial live cells = %d, expected 5", got)
	}
	s.Step()
	waitFor(t, stateCh, RunningStateStep)
	st := waitFor(t, stateCh, RunningStateManual)
	if st.IterationNum != 1 || st.LiveCells != 5 || st.Changed != 4 {
		t.Fatalf("unexpected status %+v", st)
	}
	if f := s.Frame(); f.Generation != 1 || f.LiveCells() != 5 {
		t.Fatalf("unexpected frame generation=%d live=%d", f.Generation, f.LiveCells())
	}
}

func TestRunFinishesAtMaxSteps(t *testing.T) {
	o := newTestOptions("glider")
	o.MaxSteps = 5
	s, stateCh := start(t, o)
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 5 {
		t.Fatalf("finished at iteration %d, expected 5", st.IterationNum)
	}
	if s.Status().RunningMode != RunningStateFinished {
		t.Fatalf("mode = %v", s.Status().RunningMode)
	}
}

func TestRunFinishesWhenStable(t *testing.T) {
	s, stateCh := start(t, newTestOptions("glider"))
	s.Clear()
	waitFor(t, stateCh, RunningStateManual)

	block, err := universe.ParsePattern("block", "", universe.Coordinate{Row: 5, Col: 5}, "OO", "OO")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddPattern(block); err != nil {
		t.Fatal(err)
	}
	if err := s.SettlePattern("block"); err != nil {
		t.Fatal(err)
	}
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 1 || st.LiveCells != 4 || st.Changed != 0 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStopInterruptsRun(t *testing.T) {
	o := newTestOptions("pulsar")
	o.MaxSteps = 0
	o.Interval = time.Millisecond
	s, stateCh := start(t, o)
	s.Run()
	waitFor(t, stateCh, RunningStateRun)
	s.Stop()
	waitFor(t, stateCh, RunningStateManual)
	time.Sleep(20 * time.Millisecond)
	if mode := s.Status().RunningMode; mode != RunningStateManual {
		t.Fatalf("mode = %v after Stop", mode)
	}
	gen := s.Frame().Generation
	time.Sleep(20 * time.Millisecond)
	if got := s.Frame().Generation; got != gen {
		t.Fatalf("generation moved from %d to %d after Stop", gen, got)
	}
}

func TestSettlePatternErrors(t *testing.T) {
	s, _ := start(t, newTestOptions(""))
	if err := s.SettlePattern("nope"); !errors.Is(err, universe.ErrUnknownPattern) {
		t.Fatalf("err = %v, expected ErrUnknownPattern", err)
	}
	glider, _ := universe.ParsePattern("glider", "", universe.Coordinate{}, "O")
	if err := s.AddPattern(glider); !errors.Is(err, universe.ErrDuplicatePattern) {
		t.Fatalf("err = %v, expected ErrDuplicatePattern", err)
	}
}

func TestEditing(t *testing.T) {
	s, stateCh := start(t, newTestOptions(""))
	s.Clear()
	waitFor(t, stateCh, RunningStateManual)
	waitFrame(t, s, func(f Frame) bool { return f.LiveCells() == 0 })

	s.InverseCell(5, 5)
	f := waitFrame(t, s, func(f Frame) bool { return f.LiveCells() == 1 })
	if !f.Alive(5, 5) {
		t.Fatalf("expected (5,5) alive\n%s", f)
	}

	s.InverseCell(50, 50)
	s.DrawGlider(10, 10)
	waitFrame(t, s, func(f Frame) bool { return f.LiveCells() == 6 })

	s.DrawPulsar(0, 0)
	waitFrame(t, s, func(f Frame) bool { return f.LiveCells() == 54 })
	if got := s.Status().LiveCells; got != 54 {
		t.Fatalf("status live cells = %d, expected 54", got)
	}
}

func TestResize(t *testing.T) {
	s, stateCh := start(t, newTestOptions("glider"))

	//a rejected size leaves the grid and everything published about it untouched
	if err := s.Resize(8, -1); !errors.Is(err, universe.ErrInvalidDimensions) {
		t.Fatalf("err = %v, expected ErrInvalidDimensions", err)
	}
	err := s.call(func() error {
		if s.u.Width() != 20 || s.u.Height() != 20 || s.u.LiveCells() != 5 {
			return fmt.Errorf("universe changed to %dx%d live=%d", s.u.Width(), s.u.Height(), s.u.LiveCells())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if f := s.Frame(); f.Width != 20 || f.Height != 20 || f.LiveCells() != 5 {
		t.Fatalf("frame changed to %dx%d live=%d", f.Width, f.Height, f.LiveCells())
	}
	if o := s.Options(); o.Width != 20 || o.Height != 20 {
		t.Fatalf("options changed to %dx%d", o.Width, o.Height)
	}
	if st := s.Status(); st.LiveCells != 5 {
		t.Fatalf("status changed: %+v", st)
	}

	if err := s.Resize(8, 4); err != nil {
		t.Fatal(err)
	}
	waitFor(t, stateCh, RunningStateManual)
	f := s.Frame()
	if f.Width != 8 || f.Height != 4 || f.LiveCells() != 0 {
		t.Fatalf("unexpected frame %dx%d live=%d", f.Width, f.Height, f.LiveCells())
	}
	if o := s.Options(); o.Width != 8 || o.Height != 4 {
		t.Fatalf("options not updated: %dx%d", o.Width, o.Height)
	}
	if err := s.Resize(-1, 4); !errors.Is(err, universe.ErrInvalidDimensions) {
		t.Fatalf("err = %v, expected ErrInvalidDimensions", err)
	}
}

func TestResizeStopsRun(t *testing.T) {
	o := newTestOptions("pulsar")
	o.MaxSteps = 0
	o.Interval = time.Millisecond
	s, stateCh := start(t, o)
	s.Run()
	waitFor(t, stateCh, RunningStateRun)
	if err := s.Resize(10, 10); err != nil {
		t.Fatal(err)
	}
	waitFor(t, stateCh, RunningStateManual)
	time.Sleep(20 * time.Millisecond)
	if mode := s.Status().RunningMode; mode != RunningStateManual {
		t.Fatalf("mode = %v after Resize", mode)
	}
	if f := s.Frame(); f.Generation != 0 || f.LiveCells() != 0 {
		t.Fatalf("grid kept running after Resize: generation=%d live=%d", f.Generation, f.LiveCells())
	}
}

func TestRunEndsWhenServeIsCancelled(t *testing.T) {
	baseline := runtime.NumGoroutine()

	o := newTestOptions("glider")
	o.MaxSteps = 0
	o.Interval = time.Hour
	stateCh := make(chan Status, 10)
	s, err := New(o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx) }()

	s.Run()
	waitFor(t, stateCh, RunningStateRun)
	waitFor(t, stateCh, RunningStateRun) //back to running after the first step
	cancel()
	<-served

	//the run cycle must not wait for Close once the main loop is gone
	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d, expected at most %d", runtime.NumGoroutine(), baseline)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRenderMatchesUniverse(t *testing.T) {
	o := newTestOptions("")
	s, err := New(o, nil)
	if err != nil {
		t.Fatal(err)
	}
	u, _ := universe.New(o.Width, o.Height, universe.WithSeed(o.Seed))
	if s.Render() != u.Render() {
		t.Fatal("frame render differs from a universe with the same seed")
	}
}

func TestUnknownPatternOption(t *testing.T) {
	if _, err := New(newTestOptions("nope"), nil); !errors.Is(err, universe.ErrUnknownPattern) {
		t.Fatalf("err = %v, expected ErrUnknownPattern", err)
	}
}

type countingViewer struct {
	refreshed atomic.Int32
	s         *Simulation
}

func (v *countingViewer) Refresh()               { v.refreshed.Add(1) }
func (v *countingViewer) Register(s *Simulation) { v.s = s }
func (v *countingViewer) Start() error           { return nil }

func TestViewerRefresh(t *testing.T) {
	stateCh := make(chan Status, 10)
	s, err := New(newTestOptions("glider"), stateCh)
	if err != nil {
		t.Fatal(err)
	}
	v := &countingViewer{}
	s.RegisterViewer(v)
	if v.s != s {
		t.Fatal("viewer was not registered")
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx) }()

	s.Step()
	waitFor(t, stateCh, RunningStateManual)
	if v.refreshed.Load() != 1 {
		t.Fatalf("refreshed %d times, expected 1", v.refreshed.Load())
	}

	cancel()
	if err := <-served; !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve returned %v, expected context.Canceled", err)
	}
	if err := s.SettlePattern("glider"); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, expected ErrClosed", err)
	}
}
