package view

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"lifegrid/src/simulation"
)

func newSimulation(t *testing.T) *simulation.Simulation {
	t.Helper()
	o := simulation.DefaultOptions
	o.Width = 12
	o.Height = 6
	o.Pattern = "glider"
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := simulation.New(&o, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestConsoleOut(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleOut(&buf, false)
	c.PrintGrid = true
	s := newSimulation(t)
	s.RegisterViewer(c)

	out := buf.String()
	for _, want := range []string{"Running configuration:", "Dimension: 12 x 6", "Max iterations: 1000 steps", "engine: bitset", "pattern: glider"} {
		if !strings.Contains(out, want) {
			t.Fatalf("configuration output misses %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Finish(simulation.Status{IterationNum: 42, LiveCells: 5})
	out = buf.String()
	for _, want := range []string{"Finished:", "Last iteration: 42", "Live cells: 5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, s.Render()) {
		t.Fatalf("output does not end with the grid:\n%s", out)
	}
}

func TestConsoleOutProgress(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleOut(&buf, false)
	s := newSimulation(t)
	c.Register(s)
	buf.Reset()

	//the status did not move, nothing to report
	c.Refresh()
	c.Refresh()
	if buf.Len() != 0 {
		t.Fatalf("unexpected progress output %q", buf.String())
	}
}
