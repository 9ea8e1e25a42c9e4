package universe

import (
	"context"
	"log/slog"
	"time"
)

//NextState applies the B3/S23 rule to a single cell
func NextState(alive bool, neighbors int) bool {
	switch {
	case alive && neighbors < 2:
		//underpopulation
		return false
	case alive && (neighbors == 2 || neighbors == 3):
		return true
	case alive && neighbors > 3:
		//overpopulation
		return false
	case !alive && neighbors == 3:
		//reproduction
		return true
	}
	return alive
}

//Tick advances the universe by one generation.
//All cells are computed from the current buffer into the spare one, then the buffers are swapped.
func (u *Universe) Tick() {
	start := time.Now()
	logTransitions := u.transLog != nil && u.transLog.Enabled(context.Background(), slog.LevelDebug)

	u.next.ClearAll()
	live, changed := 0, 0
	for row := 0; row < u.height; row++ {
		for col := 0; col < u.width; col++ {
			idx := uint(row*u.width + col)
			cur := u.cells.Test(idx)
			nxt := NextState(cur, u.LiveNeighborCount(row, col))
			if nxt {
				u.next.Set(idx)
				live++
			}
			if nxt != cur {
				changed++
				if logTransitions {
					u.transLog.Debug("cell transitioned", "row", row, "col", col, "state", stateName(nxt))
				}
			}
		}
	}
	u.cells, u.next = u.next, u.cells
	u.generation++

	u.last = TickStats{
		Generation: u.generation,
		LiveCells:  live,
		Changed:    changed,
		Elapsed:    time.Since(start),
	}
	if u.observer != nil {
		u.observer.ObserveTick(u.last)
	}
}

func stateName(alive bool) string {
	if alive {
		return "live"
	}
	return "dead"
}
