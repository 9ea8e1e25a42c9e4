package universe

//FlatIndex returns row*width + col for an in-bounds cell
func (u *Universe) FlatIndex(row, col int) (int, error) {
	if row < 0 || col < 0 || row >= u.height || col >= u.width {
		return 0, &IndexError{Row: row, Col: col, Width: u.width, Height: u.height}
	}
	return row*u.width + col, nil
}

//ToroidalIndex wraps any signed coordinate onto the grid and returns its flat index.
//ok is false only for an empty universe.
func (u *Universe) ToroidalIndex(row, col int) (idx int, ok bool) {
	if u.Empty() {
		return 0, false
	}
	return wrap(row, u.height)*u.width + wrap(col, u.width), true
}

//wrap is the floored modulo, dim must be positive
func wrap(v, dim int) int {
	return ((v % dim) + dim) % dim
}

func (u *Universe) alive(row, col int) bool {
	return u.cells.Test(uint(row*u.width + col))
}

//LiveNeighborCount counts the live cells among the 8 toroidally adjacent ones
func (u *Universe) LiveNeighborCount(row, col int) int {
	if u.Empty() {
		return 0
	}
	row, col = wrap(row, u.height), wrap(col, u.width)

	north := row - 1
	if row == 0 {
		north = u.height - 1
	}
	south := row + 1
	if south == u.height {
		south = 0
	}
	west := col - 1
	if col == 0 {
		west = u.width - 1
	}
	east := col + 1
	if east == u.width {
		east = 0
	}

	count := 0
	for _, n := range [8]bool{
		u.alive(north, west), u.alive(north, col), u.alive(north, east),
		u.alive(row, west), u.alive(row, east),
		u.alive(south, west), u.alive(south, col), u.alive(south, east),
	} {
		if n {
			count++
		}
	}
	return count
}
