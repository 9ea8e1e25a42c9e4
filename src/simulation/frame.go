package simulation

import (
	"strings"

	"github.com/bits-and-blooms/bitset"

	"lifegrid/src/universe"
)

//Frame is a copy of the grid taken after a change, safe to read from any goroutine
type Frame struct {
	Width      int
	Height     int
	Generation int
	cells      *bitset.BitSet
}

//Alive reports the state of the cell, false outside the grid
func (f Frame) Alive(row, col int) bool {
	if f.cells == nil || row < 0 || col < 0 || row >= f.Height || col >= f.Width {
		return false
	}
	return f.cells.Test(uint(row*f.Width + col))
}

//LiveCells counts the live cells of the frame
func (f Frame) LiveCells() int {
	if f.cells == nil {
		return 0
	}
	return int(f.cells.Count())
}

//Rows walks the frame row by row
func (f Frame) Rows(cb func(row int, cells []bool)) {
	line := make([]bool, f.Width)
	for row := 0; row < f.Height; row++ {
		for col := range line {
			line[col] = f.Alive(row, col)
		}
		cb(row, line)
	}
}

func (f Frame) String() string {
	var b strings.Builder
	f.Rows(func(_ int, cells []bool) {
		for _, alive := range cells {
			if alive {
				b.WriteRune(universe.LiveSymbol)
			} else {
				b.WriteRune(universe.DeadSymbol)
			}
		}
		b.WriteByte('\n')
	})
	return b.String()
}
