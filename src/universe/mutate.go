package universe

import "fmt"

//Toggle flips the state of an in-bounds cell
func (u *Universe) Toggle(row, col int) error {
	if u.Empty() {
		return nil
	}
	idx, err := u.FlatIndex(row, col)
	if err != nil {
		return err
	}
	u.cells.Flip(uint(idx))
	return nil
}

//Alive reports the state of an in-bounds cell, an empty universe has no live cells
func (u *Universe) Alive(row, col int) (bool, error) {
	if u.Empty() {
		return false, nil
	}
	idx, err := u.FlatIndex(row, col)
	if err != nil {
		return false, err
	}
	return u.cells.Test(uint(idx)), nil
}

//SetCells sets every given cell alive, wrapping coordinates around the torus.
//Other cells are left untouched.
func (u *Universe) SetCells(cells []Coordinate) {
	for _, c := range cells {
		if idx, ok := u.ToroidalIndex(c.Row, c.Col); ok {
			u.cells.Set(uint(idx))
		}
	}
}

//Stamp places shape with its origin at the given center
func (u *Universe) Stamp(centerRow, centerCol int, shape Shape) {
	for _, c := range shape {
		if idx, ok := u.ToroidalIndex(centerRow+c.Row, centerCol+c.Col); ok {
			u.cells.Set(uint(idx))
		}
	}
}

//Place stamps a pattern at its own placement offset
func (u *Universe) Place(p Pattern) {
	u.Stamp(p.Offset.Row, p.Offset.Col, p.Shape())
}

//DrawGlider places a glider centered at the given cell
func (u *Universe) DrawGlider(centerRow, centerCol int) {
	u.Stamp(centerRow, centerCol, Glider)
}

//DrawPulsar places a pulsar centered at the given cell
func (u *Universe) DrawPulsar(centerRow, centerCol int) {
	u.Stamp(centerRow, centerCol, Pulsar)
}

//SetWidth resizes the universe, every cell becomes dead
func (u *Universe) SetWidth(width int) error {
	if err := CheckDimensions(width, u.height); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	u.width = width
	u.allocate()
	return nil
}

//SetHeight resizes the universe, every cell becomes dead
func (u *Universe) SetHeight(height int) error {
	if err := CheckDimensions(u.width, height); err != nil {
		return fmt.Errorf("set height: %w", err)
	}
	u.height = height
	u.allocate()
	return nil
}

//Clear kills every cell and resets the generation counter
func (u *Universe) Clear() {
	u.cells.ClearAll()
	u.generation = 0
	u.last = TickStats{}
}

//Randomize sets every cell alive with probability 0.5 using the universe's random source
func (u *Universe) Randomize() {
	u.cells.ClearAll()
	for i := 0; i < u.width*u.height; i++ {
		if u.rnd.Float64() >= 0.5 {
			u.cells.Set(uint(i))
		}
	}
}
