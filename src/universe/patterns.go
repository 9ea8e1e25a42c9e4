package universe

import (
	"fmt"
	"sort"
)

//Shape is a list of cell offsets relative to a center
type Shape []Coordinate

//Glider moves one cell down and right every four generations
var Glider = Shape{
	{-1, 0},
	{0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

//Pulsar is a period 3 oscillator, 13x13 around its center
var Pulsar = pulsar()

func pulsar() Shape {
	s := make(Shape, 0, 48)
	for _, near := range []int{1, 6} {
		for _, far := range []int{2, 3, 4} {
			for _, rs := range []int{-1, 1} {
				for _, cs := range []int{-1, 1} {
					s = append(s, Coordinate{rs * near, cs * far}, Coordinate{rs * far, cs * near})
				}
			}
		}
	}
	return s
}

//Pattern is a named bit matrix stamped with its top-left corner at Offset
type Pattern struct {
	Name   string
	Descr  string
	Width  int
	Height int
	Bits   []bool //row-major, Width*Height
	Offset Coordinate
}

//ParsePattern builds a pattern from rows of '.' (dead) and 'O' (alive)
func ParsePattern(name, descr string, offset Coordinate, rows ...string) (Pattern, error) {
	p := Pattern{Name: name, Descr: descr, Height: len(rows), Offset: offset}
	if name == "" {
		return p, fmt.Errorf("%w: empty name", ErrMalformedPattern)
	}
	for r, row := range rows {
		if r == 0 {
			p.Width = len(row)
		} else if len(row) != p.Width {
			return p, fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrMalformedPattern, name, r, len(row), p.Width)
		}
		for c, ch := range []byte(row) {
			switch ch {
			case 'O':
				p.Bits = append(p.Bits, true)
			case '.':
				p.Bits = append(p.Bits, false)
			default:
				return p, fmt.Errorf("%w: %s has unexpected %q at (%d, %d)", ErrMalformedPattern, name, ch, r, c)
			}
		}
	}
	return p, nil
}

func mustParsePattern(name, descr string, offset Coordinate, rows ...string) Pattern {
	p, err := ParsePattern(name, descr, offset, rows...)
	if err != nil {
		panic(err)
	}
	return p
}

//Shape lists the live cells relative to the top-left corner
func (p Pattern) Shape() Shape {
	s := Shape{}
	for i, b := range p.Bits {
		if b {
			s = append(s, Coordinate{i / p.Width, i % p.Width})
		}
	}
	return s
}

//Registry stores patterns by name
type Registry struct {
	patterns map[string]Pattern
}

//NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{patterns: map[string]Pattern{}}
}

//Register adds a pattern, names must be unique
func (r *Registry) Register(p Pattern) error {
	if p.Name == "" || len(p.Bits) != p.Width*p.Height {
		return fmt.Errorf("%w: %q", ErrMalformedPattern, p.Name)
	}
	if _, ok := r.patterns[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePattern, p.Name)
	}
	r.patterns[p.Name] = p
	return nil
}

//Lookup returns the pattern registered under name
func (r *Registry) Lookup(name string) (Pattern, bool) {
	p, ok := r.patterns[name]
	return p, ok
}

//Names returns the registered pattern names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.patterns))
	for k := range r.patterns {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	for _, p := range []Pattern{
		mustParsePattern("copperhead", "c/10 orthogonal spaceship", Coordinate{33, 33},
			".OO..OO.",
			"...OO...",
			"...OO...",
			"O.O..O.O",
			"O......O",
			"........",
			"O......O",
			".OO..OO.",
			"..OOOO..",
			"........",
			"...OO...",
			"...OO...",
		),
		mustParsePattern("glider", "the smallest spaceship", Coordinate{0, 0},
			".O.",
			"..O",
			"OOO",
		),
		mustParsePattern("pulsar", "period 3 oscillator", Coordinate{2, 2},
			"..OOO...OOO..",
			".............",
			"O....O.O....O",
			"O....O.O....O",
			"O....O.O....O",
			"..OOO...OOO..",
			".............",
			"..OOO...OOO..",
			"O....O.O....O",
			"O....O.O....O",
			"O....O.O....O",
			".............",
			"..OOO...OOO..",
		),
	} {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}()

//DefaultRegistry returns a copy of the built-in patterns which the caller may extend
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for k, v := range defaultRegistry.patterns {
		r.patterns[k] = v
	}
	return r
}

//PatternNames lists the built-in pattern names
func PatternNames() []string {
	return defaultRegistry.Names()
}
