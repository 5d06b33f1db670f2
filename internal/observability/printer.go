package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	cmdStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Printer writes the progress lines dmenv shows while it works:
//
//	:: Locking dependencies
//	-> Using existing virtualenv: .venv/dev/3.7.1
//	-> running .venv/dev/3.7.1/bin/python -m pip freeze
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter creates a Printer writing to stdout and stderr.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Info1 announces a top-level step.
func (p *Printer) Info1(msg string) {
	fmt.Fprintf(p.Out, "%s %s\n", markerStyle.Render("::"), msg)
}

// Info2 announces a sub-step.
func (p *Printer) Info2(msg string) {
	fmt.Fprintf(p.Out, "%s %s\n", markerStyle.Render("->"), msg)
}

// Cmd shows a command about to run as a child process.
func (p *Printer) Cmd(bin string, args []string) {
	fmt.Fprintf(p.Out, "%s running %s %s\n", markerStyle.Render("->"), cmdStyle.Render(bin), strings.Join(args, " "))
}

// Exec shows a command line that replaces the current process.
func (p *Printer) Exec(argv []string) {
	fmt.Fprintf(p.Out, "%s %s\n", markerStyle.Render("$"), strings.Join(argv, " "))
}

// Println prints a bare line, used for values meant to be captured by
// scripts such as the virtualenv path.
func (p *Printer) Println(msg string) {
	fmt.Fprintln(p.Out, msg)
}

// Error reports a failure on the error stream.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.Err, "%s %v\n", errorStyle.Render("Error:"), err)
}
