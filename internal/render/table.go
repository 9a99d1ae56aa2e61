package render

import (
	"fmt"
	"shopstats/internal/models"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
)

// PageTable renders the metrics and every chart payload of view as text
// tables, one after another.
func PageTable(view *models.PageView, format string) (string, error) {
	if format != FormatTable && format != FormatMarkdown {
		return "", fmt.Errorf("unknown table format %q", format)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d rows)\n", view.Title, view.Rows)
	if view.Notice != "" {
		fmt.Fprintln(&b, view.Notice)
	}

	metrics := newWriter(view.Title)
	metrics.AppendHeader(table.Row{"Metric", "Value"})
	for _, m := range view.Metrics {
		metrics.AppendRow(table.Row{m.Label, m.Display})
	}
	b.WriteString(renderAs(metrics, format))
	b.WriteString("\n")

	for _, c := range view.Charts {
		b.WriteString("\n")
		b.WriteString(renderAs(chartTable(c), format))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func newWriter(title string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	return t
}

func renderAs(t table.Writer, format string) string {
	if format == FormatMarkdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}

func chartTable(c models.Chart) table.Writer {
	t := newWriter(c.Title)
	if c.NoData {
		t.AppendRow(table.Row{models.NoDataLabel})
		return t
	}
	switch {
	case len(c.Points) > 0:
		t.AppendHeader(table.Row{c.XLabel, c.YLabel})
		for _, p := range c.Points {
			t.AppendRow(table.Row{p.Label, trimFloat(p.Value)})
		}
	case c.CrossTab != nil:
		ct := c.CrossTab
		header := table.Row{ct.RowColumn}
		for _, col := range ct.Cols {
			header = append(header, col)
		}
		t.AppendHeader(append(header, "Total"))
		for i, row := range ct.Rows {
			r := table.Row{row}
			for _, n := range ct.Counts[i] {
				r = append(r, n)
			}
			t.AppendRow(append(r, ct.RowTotals[i]))
		}
		footer := table.Row{"Total"}
		for _, n := range ct.ColTotals {
			footer = append(footer, n)
		}
		t.AppendFooter(append(footer, ct.Total))
	case c.Matrix != nil:
		m := c.Matrix
		header := table.Row{m.RowColumn}
		for _, col := range m.Cols {
			header = append(header, col)
		}
		t.AppendHeader(header)
		for i, row := range m.Rows {
			r := table.Row{row}
			for _, cell := range m.Cells[i] {
				if cell == nil {
					r = append(r, models.NoDataLabel)
					continue
				}
				r = append(r, trimFloat(*cell))
			}
			t.AppendRow(r)
		}
	case len(c.Histogram) > 0:
		t.AppendHeader(table.Row{"Group", "From", "To", "Count"})
		for _, s := range c.Histogram {
			for _, bin := range s.Bins {
				t.AppendRow(table.Row{s.Group, trimFloat(bin.Start), trimFloat(bin.End), bin.Count})
			}
		}
	case len(c.Boxes) > 0:
		t.AppendHeader(table.Row{"Group", "Count", "Min", "Q1", "Median", "Q3", "Max"})
		for _, bx := range c.Boxes {
			t.AppendRow(table.Row{bx.Group, bx.Count, trimFloat(bx.Min), trimFloat(bx.Q1), trimFloat(bx.Median), trimFloat(bx.Q3), trimFloat(bx.Max)})
		}
	case len(c.Regions) > 0:
		t.AppendHeader(table.Row{"State", "Code", "Count"})
		for _, r := range c.Regions {
			t.AppendRow(table.Row{r.Name, r.Code, r.Count})
		}
	default:
		t.AppendRow(table.Row{models.NoDataLabel})
	}
	return t
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
