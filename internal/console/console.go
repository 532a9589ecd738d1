// Package console prints operator-facing status lines. Prefixes are
// coloured only when the destination is a terminal.
package console

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

type Console struct {
	out *termenv.Output
	err *termenv.Output
}

func New(stdout, stderr io.Writer) *Console {
	return &Console{
		out: termenv.NewOutput(stdout),
		err: termenv.NewOutput(stderr),
	}
}

func (c *Console) line(o *termenv.Output, prefix, colour, format string, args ...any) {
	tag := o.String(prefix).Foreground(o.Color(colour)).String()
	fmt.Fprintf(o, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

// Infof reports a pipeline step.
func (c *Console) Infof(format string, args ...any) {
	c.line(c.out, "[*]", "6", format, args...)
}

// Progressf reports one finished output file.
func (c *Console) Progressf(format string, args ...any) {
	c.line(c.out, "[>]", "4", format, args...)
}

func (c *Console) Successf(format string, args ...any) {
	c.line(c.out, "[+++]", "2", format, args...)
}

func (c *Console) Warnf(format string, args ...any) {
	c.line(c.err, "[!]", "3", format, args...)
}

func (c *Console) Errorf(format string, args ...any) {
	c.line(c.err, "[-]", "1", format, args...)
}

// Stdout is the plain writer behind the status lines.
func (c *Console) Stdout() io.Writer {
	return c.out
}
