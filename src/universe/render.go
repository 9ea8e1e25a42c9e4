package universe

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

const (
	LiveSymbol = '◼'
	DeadSymbol = '◻'
)

//Render returns the grid as text, one line per row
func (u *Universe) Render() string {
	return u.String()
}

func (u *Universe) String() string {
	var b strings.Builder
	b.Grow(u.height * (u.width*3 + 1))
	for row := 0; row < u.height; row++ {
		for col := 0; col < u.width; col++ {
			if u.alive(row, col) {
				b.WriteRune(LiveSymbol)
			} else {
				b.WriteRune(DeadSymbol)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

//Cells exposes the backing words of the current generation, bit i%64 of word i/64 is the cell with flat index i.
//The slice must be treated as read-only and is only valid until the next mutating call.
func (u *Universe) Cells() []uint64 {
	return u.cells.Bytes()
}

//Snapshot returns a copy of the current generation owned by the caller
func (u *Universe) Snapshot() *bitset.BitSet {
	return u.cells.Clone()
}
