package report

import (
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-triad/coupling"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Significance labels
const (
	StrongLabel      = "Strong"
	SignificantLabel = "Significant"
	NoneLabel        = "None"
	DegenerateLabel  = "Degenerate"
	NotTestedLabel   = "-"
)

var (
	StrongColor      = color.New(color.FgRed, color.Bold)
	SignificantColor = color.New(color.FgYellow)
	NoneColor        = color.New(color.FgCyan)
	DegenerateColor  = color.New(color.FgMagenta)
)

// PlainLabel classifies a result by its normal-approximation p-value: Strong
// below alpha/10, Significant below alpha, None otherwise
func PlainLabel(r *coupling.Result, alpha float64) string {
	switch s := r.Significance; {
	case s == nil:
		return NotTestedLabel
	case s.Degenerate:
		return DegenerateLabel
	case s.P < alpha/10:
		return StrongLabel
	case s.P < alpha:
		return SignificantLabel
	default:
		return NoneLabel
	}
}

// ColorLabel is PlainLabel with terminal color
func ColorLabel(r *coupling.Result, alpha float64) string {
	text := PlainLabel(r, alpha)
	switch text {
	case StrongLabel:
		return StrongColor.Sprint(text)
	case SignificantLabel:
		return SignificantColor.Sprint(text)
	case NoneLabel:
		return NoneColor.Sprint(text)
	case DegenerateLabel:
		return DegenerateColor.Sprint(text)
	default:
		return text
	}
}

// PrintTable renders one line per result with the given decimal precision
func PrintTable(w io.Writer, results []*coupling.Result, alpha float64, precision int) error {
	fmtFloat := func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtOptional := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmtFloat(*v)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "f1", "f2", "b2", "z", "p", "p_emp", "Label", "L", "Coh (s)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		row := NewRow(r)
		data = append(data, []string{
			row.File,
			fmtOptional(row.F1Peak),
			fmtOptional(row.F2Peak),
			fmtOptional(row.B2Peak),
			fmtOptional(row.PeakZ),
			fmtOptional(row.PeakP),
			fmtOptional(row.PEmp),
			ColorLabel(r, alpha),
			fmtOptional(row.LockStatic),
			fmtOptional(row.CohTime),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
