package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"lifegrid/src/simulation"
)

//ConsoleOut is the headless viewer: prints the configuration, the progress and the summary
type ConsoleOut struct {
	s         *simulation.Simulation
	w         io.Writer
	au        aurora.Aurora
	startTime time.Time
	lastIter  int
	PrintGrid bool //print the final grid on Finish
}

func NewConsoleOut(w io.Writer, colors bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors)}
}

//Refresh prints the progress every 10 iterations
func (c *ConsoleOut) Refresh() {
	st := c.s.Status()
	if st.IterationNum != c.lastIter && st.IterationNum%10 == 0 {
		fmt.Fprintf(c.w, "  Iterations done: %v\n", st.IterationNum)
	}
	c.lastIter = st.IterationNum
}

func (c *ConsoleOut) Register(s *simulation.Simulation) {
	c.s = s
	o := s.Options()
	fmt.Fprintln(c.w, c.au.Bold("Running configuration:"))
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() error {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
	return nil
}

//Finish prints the summary for the final status
func (c *ConsoleOut) Finish(st simulation.Status) {
	totalTime := time.Since(c.startTime).Round(time.Millisecond)
	resultData := map[string]interface{}{
		"Last iteration": st.IterationNum,
		"Total time":     totalTime,
		"Live cells":     st.LiveCells,
	}
	fmt.Fprintln(c.w, c.au.Red("\nFinished:"))
	c.printHashData(resultData)
	if c.PrintGrid {
		fmt.Fprint(c.w, c.s.Render())
	}
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", c.au.Green(propName), d[propName])
	}
}
