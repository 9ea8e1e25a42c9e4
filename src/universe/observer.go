package universe

import "log/slog"

//TickObserver is notified after every tick
type TickObserver interface {
	ObserveTick(s TickStats)
}

//TickObserverFunc adapts a function to TickObserver
type TickObserverFunc func(s TickStats)

func (f TickObserverFunc) ObserveTick(s TickStats) { f(s) }

//LogObserver reports the duration of every tick to l at debug level
func LogObserver(l *slog.Logger) TickObserver {
	return TickObserverFunc(func(s TickStats) {
		l.Debug("tick",
			"generation", s.Generation,
			"elapsed", s.Elapsed,
			"live", s.LiveCells,
			"changed", s.Changed,
		)
	})
}
