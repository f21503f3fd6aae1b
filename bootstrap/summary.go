package bootstrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/seqkit/component"
)

// Summary prints the startup banner.
type Summary struct {
	name            string
	version         string
	environment     string
	startupDuration time.Duration
	demos           []string
	out             io.Writer
}

// NewSummary creates a summary writing to out, or stderr when out is nil.
func NewSummary(name, version, environment string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stderr
	}
	return &Summary{name: name, version: version, environment: environment, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackDemos records the demos the run will execute.
func (s *Summary) TrackDemos(names []string) {
	s.demos = append([]string(nil), names...)
}

// Display prints the banner, the components and the demo selection.
func (s *Summary) Display(components []component.Description) {
	fmt.Fprintf(s.out, "\n%s %s (%s) started in %.2fs\n", s.name, s.version, s.environment, s.startupDuration.Seconds())

	if len(components) == 0 {
		fmt.Fprintf(s.out, "   └── no components\n")
	} else {
		fmt.Fprintf(s.out, "components\n")
		for i, c := range components {
			line := c.Name
			if c.Details != "" {
				line += ": " + c.Details
			}
			fmt.Fprintf(s.out, "   %s %s\n", treePrefix(i, len(components)), line)
		}
	}

	if len(s.demos) > 0 {
		fmt.Fprintf(s.out, "demos\n")
		for i, d := range s.demos {
			fmt.Fprintf(s.out, "   %s %s\n", treePrefix(i, len(s.demos)), d)
		}
	}
	fmt.Fprintln(s.out)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
