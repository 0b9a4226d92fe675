package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes human-readable batch summaries. Colors follow
// fatih/color's global NoColor switch.
type Printer struct {
	out     io.Writer
	ok      *color.Color
	skip    *color.Color
	fail    *color.Color
	label   *color.Color
	verbose bool
}

// NewPrinter returns a Printer writing to out. With verbose set every
// outcome is listed, otherwise only failures are.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{
		out:     out,
		ok:      color.New(color.FgGreen),
		skip:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
		verbose: verbose,
	}
}

// Print writes the summary line for b followed by the listed outcomes.
func (p *Printer) Print(b *Batch, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = p.skip.Sprint("[dry run] ")
	}
	fmt.Fprintf(p.out, "%s%s: %s, %s, %s\n",
		prefix,
		p.label.Sprint(b.Stage),
		p.ok.Sprintf("%d ok", b.Count(Success)),
		p.skip.Sprintf("%d skipped", b.Count(Skipped)),
		p.fail.Sprintf("%d failed", b.Count(Failed)),
	)

	for _, o := range b.Outcomes {
		switch {
		case o.Status == Failed:
			fmt.Fprintf(p.out, "  %s %s: %v\n", p.fail.Sprint("✗"), o.Path, o.Err)
		case !p.verbose:
		case o.Status == Skipped:
			fmt.Fprintf(p.out, "  %s %s (%s)\n", p.skip.Sprint("-"), o.Path, o.Reason)
		case o.Destination != "":
			fmt.Fprintf(p.out, "  %s %s → %s\n", p.ok.Sprint("✓"), o.Path, o.Destination)
		default:
			fmt.Fprintf(p.out, "  %s %s\n", p.ok.Sprint("✓"), o.Path)
		}
	}
}
