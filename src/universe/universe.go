package universe

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/bits-and-blooms/bitset"
)

//Coordinate addresses a cell by row and column
//stamping operations accept any signed values and wrap them around the torus
type Coordinate struct {
	Row int
	Col int
}

//TickStats describes the outcome of one generation
type TickStats struct {
	Generation int
	LiveCells  int
	Changed    int
	Elapsed    time.Duration
}

//Universe is a toroidal Game of Life grid.
//It is not safe for concurrent use: the owner serializes every call.
type Universe struct {
	width      int
	height     int
	cells      *bitset.BitSet
	next       *bitset.BitSet
	generation int
	last       TickStats

	rnd      *rand.Rand
	patterns *Registry
	observer TickObserver
	transLog *slog.Logger
}

//Option customizes a Universe at construction time
type Option func(u *Universe)

//WithSeed makes random seeding deterministic
func WithSeed(seed int64) Option {
	return func(u *Universe) {
		u.rnd = rand.New(rand.NewPCG(uint64(seed), 0))
	}
}

//WithRand uses r as the random source
func WithRand(r *rand.Rand) Option {
	return func(u *Universe) {
		if r != nil {
			u.rnd = r
		}
	}
}

//WithRegistry overrides the pattern registry used by NewSeeded
func WithRegistry(r *Registry) Option {
	return func(u *Universe) {
		if r != nil {
			u.patterns = r
		}
	}
}

//WithObserver installs the instrumentation hook called after every tick
func WithObserver(o TickObserver) Option {
	return func(u *Universe) {
		u.observer = o
	}
}

//WithTransitionLog logs every cell that changes state during a tick at debug level
func WithTransitionLog(l *slog.Logger) Option {
	return func(u *Universe) {
		u.transLog = l
	}
}

//New creates a universe where every cell is alive with probability 0.5
func New(width, height int, opts ...Option) (*Universe, error) {
	u, err := newUniverse(width, height, opts)
	if err != nil {
		return nil, err
	}
	u.Randomize()
	return u, nil
}

//NewSeeded creates a dead universe and stamps the named pattern at its placement offset.
//Pattern cells that fall outside the grid wrap around the torus.
func NewSeeded(width, height int, pattern string, opts ...Option) (*Universe, error) {
	u, err := newUniverse(width, height, opts)
	if err != nil {
		return nil, err
	}
	p, ok := u.patterns.Lookup(pattern)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
	u.Place(p)
	return u, nil
}

//CheckDimensions rejects negative sizes and sizes whose cell count does not fit an int
func CheckDimensions(width, height int) error {
	if width < 0 || height < 0 || (width > 0 && height > math.MaxInt/width) {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

func newUniverse(width, height int, opts []Option) (*Universe, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	u := &Universe{
		width:    width,
		height:   height,
		patterns: defaultRegistry,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.rnd == nil {
		u.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	u.allocate()
	return u, nil
}

//allocate (re)creates both buffers for the current dimensions, all cells dead
func (u *Universe) allocate() {
	size := uint(u.width * u.height)
	u.cells = bitset.New(size)
	u.next = bitset.New(size)
	u.generation = 0
	u.last = TickStats{}
}

//Width returns the number of columns
func (u *Universe) Width() int { return u.width }

//Height returns the number of rows
func (u *Universe) Height() int { return u.height }

//Generation returns the number of ticks since construction or the last reset
func (u *Universe) Generation() int { return u.generation }

//LastTick returns the statistics of the most recent tick
func (u *Universe) LastTick() TickStats { return u.last }

//LiveCells counts the live cells
func (u *Universe) LiveCells() int { return int(u.cells.Count()) }

//Empty reports whether the universe has no cells at all
func (u *Universe) Empty() bool { return u.width == 0 || u.height == 0 }
