// printer.go - Colored terminal output for the command line tools

package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes status lines. Colors switch off on their own when the
// output is not a terminal or NO_COLOR is set.
type Printer struct {
	out     io.Writer
	success *color.Color
	warning *color.Color
	failure *color.Color
	header  *color.Color
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:     out,
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		header:  color.New(color.Bold),
	}
}

func (p *Printer) Header(format string, args ...any) {
	p.header.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Success(format string, args ...any) {
	p.success.Fprint(p.out, "✓ ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Warning(format string, args ...any) {
	p.warning.Fprint(p.out, "! ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Error(format string, args ...any) {
	p.failure.Fprint(p.out, "✗ ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, "  "+format+"\n", args...)
}
