package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifegrid/src/universe"
)

//Options represents the Simulation's configurable options
type Options struct {
	Width           int
	Height          int
	Interval        time.Duration
	MaxSteps        int
	MaxSkippedTicks int
	Pattern         string //seed with the named pattern instead of random data
	Seed            int64  //0 means a random seed
	TraceCells      bool   //log every cell transition at debug level
	Logger          *slog.Logger
	Advanced        map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Changed       int
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(s *Simulation)
	Start() error
}

//RunningState is the simulation running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 64
	DefHeight             = 32
	DefMaxSkippedTicks    = 5
)

const (
	RunningStateManual RunningState = iota
	RunningStateStep
	RunningStateRun
	RunningStateFinished
)

func (rs RunningState) String() string {
	switch rs {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return fmt.Sprintf("RunningState(%d)", int(rs))
}

var DefaultOptions = Options{
	Width:           DefWidth,
	Height:          DefHeight,
	Interval:        DefSimulationInterval,
	MaxSteps:        DefMaxSteps,
	MaxSkippedTicks: DefMaxSkippedTicks,
}

var ErrClosed = errors.New("simulation is closed")

//Simulation drives a Universe for the viewers.
//The universe is only ever touched from the Serve goroutine, viewers get copies through Frame.
type Simulation struct {
	options  Options
	u        *universe.Universe
	patterns *universe.Registry
	logger   *slog.Logger

	state struct {
		Status
		runID int
		sync.Mutex
	}
	frame struct {
		f Frame
		sync.Mutex
	}

	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

//New creates the Simulation instance, the main loop is started by Serve
func New(o *Options, stateCh chan Status) (*Simulation, error) {
	if o == nil {
		o = &DefaultOptions
	}
	s := &Simulation{
		options:   *o,
		patterns:  universe.DefaultRegistry(),
		logger:    o.Logger,
		stateCh:   stateCh,
		controlCh: make(chan func(), 16),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.options.Advanced = map[string]interface{}{"engine": "bitset"}
	for k, v := range o.Advanced {
		s.options.Advanced[k] = v
	}

	opts := []universe.Option{
		universe.WithRegistry(s.patterns),
		universe.WithObserver(universe.LogObserver(s.logger)),
	}
	if o.Seed != 0 {
		opts = append(opts, universe.WithSeed(o.Seed))
		s.options.Advanced["seed"] = o.Seed
	}
	if o.TraceCells {
		opts = append(opts, universe.WithTransitionLog(s.logger))
	}

	var err error
	if o.Pattern != "" {
		s.u, err = universe.NewSeeded(o.Width, o.Height, o.Pattern, opts...)
		s.options.Advanced["pattern"] = o.Pattern
	} else {
		s.u, err = universe.New(o.Width, o.Height, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create universe: %w", err)
	}
	s.state.LiveCells = s.u.LiveCells()
	s.publish()
	return s, nil
}

//Serve runs the main loop until Close is called or ctx is done
//every command touching the universe is executed here, one at a time
func (s *Simulation) Serve(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case <-s.closeCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

//Close stops the main loop, returns immediately
func (s *Simulation) Close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}

//enqueue hands cmd to the main loop, false when the loop is gone
func (s *Simulation) enqueue(cmd func()) bool {
	select {
	case <-s.closeCh:
		return false
	case <-s.done:
		return false
	default:
	}
	select {
	case s.controlCh <- cmd:
		return true
	case <-s.closeCh:
		return false
	case <-s.done:
		return false
	}
}

//call runs cmd on the main loop and waits for its result
func (s *Simulation) call(cmd func() error) error {
	res := make(chan error, 1)
	if !s.enqueue(func() { res <- cmd() }) {
		return ErrClosed
	}
	select {
	case err := <-res:
		return err
	case <-s.done:
		return ErrClosed
	}
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
func (s *Simulation) RegisterViewer(v Viewer) {
	s.views = append(s.views, v)
	v.Register(s)
}

//StateCh returns the channel with the simulation's status updates
func (s *Simulation) StateCh() chan Status {
	return s.stateCh
}

//Status returns current simulation status
func (s *Simulation) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Status
}

//Options returns the simulation configuration
func (s *Simulation) Options() Options {
	s.state.Lock()
	defer s.state.Unlock()
	return s.options
}

//Frame returns the last published copy of the grid
func (s *Simulation) Frame() Frame {
	s.frame.Lock()
	defer s.frame.Unlock()
	return s.frame.f
}

//Render returns the last published grid as text
func (s *Simulation) Render() string {
	return s.Frame().String()
}

//Run starts the simulation, returns immediately
func (s *Simulation) Run() { s.enqueue(s.run) }

//Stop stops the simulation, returns immediately
//the Status struct will be written to the stateCh on finish
func (s *Simulation) Stop() { s.enqueue(s.stop) }

//Step does one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (s *Simulation) Step() { s.enqueue(s.step) }

//Clear kills all cells and resets all counters, returns immediately
func (s *Simulation) Clear() { s.enqueue(s.clear) }

//SettleWithRandomData populates the universe with random data
func (s *Simulation) SettleWithRandomData() {
	s.enqueue(func() {
		if mode := s.runningMode(); mode != RunningStateManual && mode != RunningStateFinished {
			return
		}
		s.u.Randomize()
		s.afterEdit()
	})
}

//InverseCell inverses the cell state at row, col
func (s *Simulation) InverseCell(row, col int) {
	s.enqueue(func() {
		if err := s.u.Toggle(row, col); err != nil {
			s.logger.Warn("inverse cell", "err", err)
			return
		}
		s.afterEdit()
	})
}

//DrawGlider places a glider centered at row, col
func (s *Simulation) DrawGlider(row, col int) {
	s.enqueue(func() {
		s.u.DrawGlider(row, col)
		s.afterEdit()
	})
}

//DrawPulsar places a pulsar centered at row, col
func (s *Simulation) DrawPulsar(row, col int) {
	s.enqueue(func() {
		s.u.DrawPulsar(row, col)
		s.afterEdit()
	})
}

//AddPattern adds a pattern to the simulation's registry
//the universe can be populated with it by calling SettlePattern
func (s *Simulation) AddPattern(p universe.Pattern) error {
	return s.call(func() error {
		return s.patterns.Register(p)
	})
}

//SettlePattern stamps the named pattern at its placement offset
func (s *Simulation) SettlePattern(name string) error {
	return s.call(func() error {
		p, ok := s.patterns.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", universe.ErrUnknownPattern, name)
		}
		s.u.Place(p)
		s.afterEdit()
		return nil
	})
}

//Resize reallocates the universe, every cell becomes dead and a running simulation stops
func (s *Simulation) Resize(width, height int) error {
	if err := universe.CheckDimensions(width, height); err != nil {
		return err
	}
	return s.call(func() error {
		if err := s.u.SetWidth(width); err != nil {
			return err
		}
		if err := s.u.SetHeight(height); err != nil {
			return err
		}
		s.state.Lock()
		s.options.Width, s.options.Height = width, height
		s.state.Unlock()
		s.resetStatus()
		s.publish()
		s.switchRunningState(RunningStateManual)
		return nil
	})
}

func (s *Simulation) runningMode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//switchRunningState switch the state of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (s *Simulation) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	st := s.state.Status
	s.state.Unlock()
	if s.stateCh != nil {
		select {
		case s.stateCh <- st:
		case <-s.closeCh:
		}
	}
}

//run starts the simulation cycle
//the cycle stops on Stop() calling or when the boundary conditions are reached
func (s *Simulation) run() {
	s.state.Lock()
	if s.state.RunningMode == RunningStateRun {
		s.state.Unlock()
		return
	}
	s.state.runID++
	id := s.state.runID
	interval, maxSkipped := s.options.Interval, s.options.MaxSkippedTicks
	s.state.Unlock()
	s.switchRunningState(RunningStateRun)

	go func() {
		skipped := 0
		for {
			if !s.stillRunning(id) {
				return
			}
			done := make(chan time.Duration, 1)
			if !s.enqueue(func() {
				//the cycle was stopped or reset while this step waited in the queue
				if !s.stillRunning(id) {
					done <- 0
					return
				}
				s.step()
				done <- s.u.LastTick().Elapsed
			}) {
				return
			}
			var elapsed time.Duration
			select {
			case elapsed = <-done:
			case <-s.closeCh:
				return
			case <-s.done:
				return
			}
			if interval <= 0 {
				continue
			}
			//the tick took longer than the interval
			if elapsed > interval {
				skipped++
			} else {
				skipped = 0
			}
			if skipped > maxSkipped {
				s.logger.Warn("simulation is too slow for the interval, finishing",
					"interval", interval, "elapsed", elapsed)
				s.enqueue(func() {
					if s.stillRunning(id) {
						s.switchRunningState(RunningStateFinished)
					}
				})
				return
			}
			select {
			case <-time.After(interval):
			case <-s.closeCh:
				return
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Simulation) stillRunning(id int) bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.runID == id && s.state.RunningMode == RunningStateRun
}

//stop stops the simulation running cycle
func (s *Simulation) stop() {
	if s.runningMode() == RunningStateRun {
		s.switchRunningState(RunningStateManual)
	}
}

//step does the new one state calculation for entire universe
func (s *Simulation) step() {
	finished := false
	rm := s.runningMode()
	defer func() {
		s.publish()
		if finished {
			s.switchRunningState(RunningStateFinished)
		} else {
			s.switchRunningState(rm)
		}
	}()

	if maxIter := s.options.MaxSteps; maxIter != 0 && s.u.Generation() >= maxIter {
		finished = true
		return
	}
	s.switchRunningState(RunningStateStep)
	s.u.Tick()
	st := s.u.LastTick()

	s.state.Lock()
	s.state.IterationNum = st.Generation
	s.state.LiveCells = st.LiveCells
	s.state.Changed = st.Changed
	s.state.IterationTime = st.Elapsed
	s.state.Unlock()

	if st.LiveCells == 0 || st.Changed == 0 {
		finished = true
	}
}

//clear clears the universe data, reset all counters
func (s *Simulation) clear() {
	s.u.Clear()
	s.resetStatus()
	s.publish()
	s.switchRunningState(RunningStateManual)
}

func (s *Simulation) resetStatus() {
	s.state.Lock()
	s.state.IterationNum = 0
	s.state.LiveCells = 0
	s.state.Changed = 0
	s.state.IterationTime = 0
	s.state.RunningMode = RunningStateManual
	s.state.runID++
	s.state.Unlock()
}

//afterEdit refreshes the counters after a manual change of the cells
func (s *Simulation) afterEdit() {
	s.state.Lock()
	s.state.LiveCells = s.u.LiveCells()
	if s.state.RunningMode == RunningStateFinished {
		s.state.RunningMode = RunningStateManual
	}
	s.state.Unlock()
	s.publish()
}

//publish copies the grid for the viewers and calls Refresh event for all registered views
func (s *Simulation) publish() {
	f := Frame{
		Width:      s.u.Width(),
		Height:     s.u.Height(),
		Generation: s.u.Generation(),
		cells:      s.u.Snapshot(),
	}
	s.frame.Lock()
	s.frame.f = f
	s.frame.Unlock()
	for _, v := range s.views {
		v.Refresh()
	}
}
