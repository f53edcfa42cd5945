package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// Status colors.
var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
)

// Printer writes the human-readable run summary.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w. Colors follow fatih/color's
// terminal detection; set color.NoColor to force plain output.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Start announces the input and the lengths to analyze.
func (p *Printer) Start(input string, tokens int, lengths []int) {
	fmt.Fprintf(p.w, "%s %s: %d tokens, window lengths %v\n", infoColor("input"), input, tokens, lengths)
}

// Result prints the numbers for one window length and its artifacts.
func (p *Printer) Result(r analyzer.LengthResult, artifacts []string) {
	label := successColor(fmt.Sprintf("length %d", r.WindowLength))
	if r.Positions == 0 {
		label = warnColor(fmt.Sprintf("length %d", r.WindowLength))
	}
	fmt.Fprintf(p.w, "%s %d positions, %d distinct, %d recurring, max %d\n",
		label, r.Positions, r.Distinct(), len(r.Recurring), r.MaxCount())
	for _, a := range artifacts {
		fmt.Fprintf(p.w, "  -> %s\n", a)
	}
}

// Pruned lists artifacts removed from an earlier run.
func (p *Printer) Pruned(paths []string) {
	for _, path := range paths {
		fmt.Fprintf(p.w, "%s %s\n", warnColor("removed"), path)
	}
}

// Done prints the closing line.
func (p *Printer) Done(outDir string) {
	fmt.Fprintf(p.w, "%s reports written to %s\n", successColor("done"), outDir)
}

// Failed prints a fatal error.
func (p *Printer) Failed(err error) {
	fmt.Fprintf(p.w, "%s %v\n", errorColor("error"), err)
}
