package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/scoring"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 72

// Printer writes human-readable summaries for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and wrapped content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, paragraphs []string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for i, para := range paragraphs {
		if i > 0 {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "")
		}
		for _, line := range wrap(para, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// PrintResult outputs an assembled result: the legend, then a table of axes.
func (p *Printer) PrintResult(r *assembler.Result) error {
	if r == nil {
		return nil
	}
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	p.printBox(r.LegendaryRaveliquarName, r.LegendNarrative)
	_, _ = fmt.Fprintf(p.out, "%s %s (%s)\n", heading("Artist:"), r.ArtistArchetype.Name, r.ArtistArchetype.Family)
	_, _ = fmt.Fprintf(p.out, "%s %s\n\n", heading("Integration:"), r.IntegrationAxis.Statement)

	table := tablewriter.NewWriter(p.out)
	table.Header([]string{"#", "Axis", "Shadow", "Luminary", "Role"})
	var rows [][]string
	for _, axis := range r.NarrativeAxes {
		role := ""
		switch axis.Index {
		case r.IntegrationAxis.Dominant.Index:
			role = "dominant"
		case r.IntegrationAxis.Stabilizing.Index:
			role = "stabilizing"
		}
		rows = append(rows, []string{
			strconv.Itoa(axis.Index + 1),
			axis.Name,
			axis.Shadow.Name,
			axis.Luminary.Name,
			role,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(p.out, "\n%s\n", faint("seed "+r.Provenance.Seed+" · "+r.Provenance.Version))
	return nil
}

// PrintEvaluation outputs normalized totals and the ranked matches.
func (p *Printer) PrintEvaluation(ev scoring.Evaluation) error {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()

	dims := make([]string, 0, len(ev.Raw))
	for d := range ev.Raw {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	_, _ = fmt.Fprintln(p.out, heading("Dimensions"))
	totals := tablewriter.NewWriter(p.out)
	totals.Header([]string{"Dimension", "Raw", "Normalized"})
	totals.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var rows [][]string
	for _, d := range dims {
		rows = append(rows, []string{d, formatScore(ev.Raw[d]), formatScore(ev.Normalized[d])})
	}
	if err := totals.Bulk(rows); err != nil {
		return err
	}
	if err := totals.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(p.out)
	_, _ = fmt.Fprintln(p.out, heading("Top matches"))
	if len(ev.Ranked) == 0 {
		_, _ = fmt.Fprintln(p.out, "  (no signal)")
		return nil
	}
	ranked := tablewriter.NewWriter(p.out)
	ranked.Header([]string{"Rank", "Entry", "Score", "Note"})
	rows = nil
	for i, r := range ev.Ranked {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Name, formatScore(r.Score), scoring.Describe(r)})
	}
	if err := ranked.Bulk(rows); err != nil {
		return err
	}
	if err := ranked.Render(); err != nil {
		return err
	}

	if ev.Skipped > 0 {
		warn := color.New(color.FgYellow).SprintFunc()
		_, _ = fmt.Fprintln(p.out, warn(fmt.Sprintf("%d answer(s) skipped: unknown question id", ev.Skipped)))
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
