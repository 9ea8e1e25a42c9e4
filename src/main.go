package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"
	"golang.org/x/sync/errgroup"

	"lifegrid/src/simulation"
	"lifegrid/src/universe"
	"lifegrid/src/view"
)

type EnvOptions struct {
	interactive bool
	verbose     bool
	traceCells  bool
	printGrid   bool
	noColor     bool
}

func main() {
	eo, so := initOptions()

	level := slog.LevelInfo
	if eo.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	so.Logger = logger
	so.TraceCells = eo.traceCells

	if err := run(eo, so); err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(eo *EnvOptions, so *simulation.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stateCh chan simulation.Status
	if !eo.interactive {
		stateCh = make(chan simulation.Status, 10) //the buffered channel to getting the simulation status
	}

	s, err := simulation.New(so, stateCh)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.Serve(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if eo.interactive {
		v, err := view.NewViewTerminal()
		if err != nil {
			s.Close()
			_ = g.Wait()
			return err
		}
		s.RegisterViewer(v)
		g.Go(func() error {
			defer s.Close()
			return v.Start()
		})
		return g.Wait()
	}

	out := view.NewConsoleOut(os.Stdout, !eo.noColor)
	out.PrintGrid = eo.printGrid
	s.RegisterViewer(out)
	g.Go(func() error {
		defer s.Close()
		if err := out.Start(); err != nil {
			return err
		}
		s.Run()
		for {
			select {
			case st := <-stateCh:
				if st.RunningMode == simulation.RunningStateFinished {
					out.Finish(st)
					return nil
				}
			case <-ctx.Done():
				fmt.Println("\nInterrupted")
				return nil
			}
		}
	})
	return g.Wait()
}

func initOptions() (eo *EnvOptions, so *simulation.Options) {
	o := simulation.DefaultOptions
	so = &o
	eo = &EnvOptions{}
	patterns := universe.PatternNames()

	flaggy.SetName("lifegrid")
	flaggy.SetDescription("Conway's Game of Life on a toroidal grid")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&so.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&so.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&so.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&so.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 means no limit")
	flaggy.Int(&so.MaxSkippedTicks, "k", "maxSkipped", "Finish the run after this many ticks slower than the interval")
	flaggy.String(&so.Pattern, "p", "pattern", "Seed with a pattern instead of random data ["+strings.Join(patterns, "|")+"]")
	flaggy.Int64(&so.Seed, "", "seed", "Random seed, 0 picks one")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.verbose, "v", "verbose", "Log every tick")
	flaggy.Bool(&eo.traceCells, "", "trace", "Log every cell transition (with --verbose)")
	flaggy.Bool(&eo.printGrid, "", "print", "Print the final grid")
	flaggy.Bool(&eo.noColor, "", "noColor", "Disable colored output")

	flaggy.Parse()

	if so.Width < 0 || so.Height < 0 {
		flaggy.ShowHelpAndExit("width and height must not be negative")
	}
	if so.Pattern != "" {
		known := false
		for _, p := range patterns {
			known = known || p == so.Pattern
		}
		if !known {
			flaggy.ShowHelpAndExit(fmt.Sprintf("unknown pattern %q", so.Pattern))
		}
	}

	return
}
