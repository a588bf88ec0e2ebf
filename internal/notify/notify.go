// Package notify carries user-facing outcome messages alongside returned errors.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Notifier receives one message per completed operation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Discard drops every message.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}

// Console writes messages to a terminal, colouring them when w is one.
type Console struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	ok     *color.Color
	fail   *color.Color
}

// NewConsole returns a Console writing successes to out and errors to errOut.
// Successes are suppressed when quiet is set.
func NewConsole(out, errOut io.Writer, quiet bool) *Console {
	return &Console{
		out:    out,
		errOut: errOut,
		quiet:  quiet,
		ok:     colorFor(out, color.FgGreen),
		fail:   colorFor(errOut, color.FgRed),
	}
}

// colorFor disables colour for writers that are not files, such as buffers.
func colorFor(w io.Writer, attr color.Attribute) *color.Color {
	c := color.New(attr)
	if _, ok := w.(*os.File); !ok {
		c.DisableColor()
	}
	return c
}

func (c *Console) Success(msg string) {
	if c.quiet {
		return
	}
	c.ok.Fprintln(c.out, msg)
}

func (c *Console) Error(msg string) {
	fmt.Fprint(c.errOut, "error: ")
	c.fail.Fprintln(c.errOut, msg)
}
