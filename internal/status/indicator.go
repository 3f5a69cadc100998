// Package status shows a spinner while the fleet tool runs.
package status

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Indicator is a spinner with a final coloured status line. Overlapping
// invocations share one spinner; it stops when the last one finishes.
type Indicator struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	active  int
	quiet   bool
}

// New creates an indicator writing to out. A quiet indicator prints nothing.
func New(out io.Writer, quiet bool) *Indicator {
	if out == nil {
		out = os.Stderr
	}
	return &Indicator{
		out:     out,
		quiet:   quiet,
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out)),
	}
}

// Start shows message next to the spinner.
func (i *Indicator) Start(message string) {
	if i.quiet {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.active++
	i.spinner.Lock()
	i.spinner.Suffix = " " + message + "..."
	i.spinner.Unlock()
	if i.active == 1 {
		i.spinner.Start()
	}
}

// Stop ends one invocation and prints message in green or red.
func (i *Indicator) Stop(ok bool, message string) {
	if i.quiet {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.active > 0 {
		i.active--
	}
	if i.active == 0 {
		i.spinner.Stop()
	}
	fmt.Fprintln(i.out, Format(ok, message))
}

// Notice prints an informational line, such as a settings reload.
func (i *Indicator) Notice(message string) {
	if i.quiet {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	fmt.Fprintln(i.out, text.FgCyan.Sprint("ℹ "+message))
}

// Format renders a final status line.
func Format(ok bool, message string) string {
	if ok {
		return text.FgGreen.Sprint("✓ " + message)
	}
	return text.FgRed.Sprint("✗ " + message)
}
