package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ReportRenderer writes an audit report as a Markdown summary
type ReportRenderer struct {
	title     string
	precision int
	maxRows   int
}

// NewReportRenderer creates a renderer. maxRows caps record tables; 0 means
// no cap.
func NewReportRenderer(title string, precision, maxRows int) *ReportRenderer {
	if title == "" {
		title = "High-frequency checks"
	}
	return &ReportRenderer{title: title, precision: precision, maxRows: maxRows}
}

// Markdown renders the report
func (r *ReportRenderer) Markdown(report *quality.AuditReport) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.title)
	fmt.Fprintf(&b, "Run `%s`, generated %s. %d records from %d sources.\n\n",
		report.RunID, report.GeneratedAt, report.TotalRows, len(report.Sources))

	r.sources(&b, report)
	r.warnings(&b, report)
	r.duration(&b, report)
	r.duplicates(&b, report)
	r.missing(&b, "Missing values", report.Missing)

	for _, m := range report.Modules {
		r.module(&b, m)
	}
	return []byte(b.String())
}

// HTML renders the Markdown summary as a standalone HTML page
func (r *ReportRenderer) HTML(report *quality.AuditReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML(r.Markdown(report), p, renderer)
}

func (r *ReportRenderer) sources(b *strings.Builder, report *quality.AuditReport) {
	b.WriteString("## Sources\n\n")
	rows := make([][]string, len(report.Sources))
	for i, s := range report.Sources {
		rows[i] = []string{s.Name, string(s.Format), strconv.Itoa(s.Rows), strconv.Itoa(s.Columns), s.Hash.Short()}
	}
	table(b, []string{"source", "format", "rows", "columns", "hash"}, rows)
}

func (r *ReportRenderer) warnings(b *strings.Builder, report *quality.AuditReport) {
	if len(report.Warnings) == 0 {
		return
	}
	b.WriteString("## Warnings\n\n")
	for _, w := range report.Warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	b.WriteString("\n")
}

func (r *ReportRenderer) duration(b *strings.Builder, report *quality.AuditReport) {
	d := report.Duration
	b.WriteString("## Interview duration\n\n")
	fmt.Fprintf(b, "%d records outside %s-%s minutes; %d without a duration (policy: %s).\n\n",
		len(d.Flagged), survey.FormatNumber(d.MinMinutes), survey.FormatNumber(d.MaxMinutes),
		d.MissingCount, d.MissingPolicy)
	if len(d.Flagged) == 0 {
		return
	}

	reasons := make([]string, len(d.Flagged))
	for i, f := range d.Flagged {
		reasons[i] = string(f.Reason)
	}
	r.records(b, report.DurationTable, "reason", reasons)
}

func (r *ReportRenderer) duplicates(b *strings.Builder, report *quality.AuditReport) {
	d := report.Duplicates
	b.WriteString("## Duplicates\n\n")
	fmt.Fprintf(b, "%d records share a `%s` value with another record.\n\n",
		len(d.Records), strings.Join(d.KeyFields, "` + `"))
	if len(d.Groups) == 0 {
		return
	}

	rows := make([][]string, len(d.Groups))
	for i, g := range d.Groups {
		rows[i] = []string{g.Key, strconv.Itoa(g.Count)}
	}
	table(b, []string{"key", "records"}, r.capRows(rows))
	r.records(b, report.DuplicateTable, "", nil)
}

func (r *ReportRenderer) missing(b *strings.Builder, heading string, m quality.MissingValueReport) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	if len(m.Entries) == 0 {
		b.WriteString("No fields.\n\n")
		return
	}
	rows := make([][]string, len(m.Entries))
	for i, e := range m.Entries {
		rows[i] = []string{e.Field, strconv.Itoa(e.MissingCount), strconv.FormatFloat(e.MissingPct, 'f', 2, 64)}
	}
	table(b, []string{"field", "missing", "%"}, rows)
}

func (r *ReportRenderer) module(b *strings.Builder, m quality.ModuleReport) {
	r.missing(b, fmt.Sprintf("%s: missing values", m.Module.Label), m.Missing)
	if len(m.Module.Fields) == 0 {
		return
	}

	if len(m.Categories.Distributions) > 0 {
		fmt.Fprintf(b, "### %s: categories (%%)\n\n", m.Module.Label)
		header := []string{"field"}
		for _, c := range m.Categories.Categories {
			header = append(header, survey.FormatNumber(c))
		}
		rows := make([][]string, 0, len(m.Categories.Distributions))
		for _, d := range m.Categories.Distributions {
			row := []string{d.Field}
			for _, c := range m.Categories.Categories {
				row = append(row, strconv.FormatFloat(d.Percent(c), 'f', 2, 64))
			}
			rows = append(rows, row)
		}
		table(b, header, rows)
	}

	fmt.Fprintf(b, "### %s: descriptive statistics\n\n", m.Module.Label)
	rows := make([][]string, len(m.Descriptive))
	for i, d := range m.Descriptive {
		rows[i] = []string{
			d.Field, strconv.Itoa(d.Count),
			d.Mean.Format(r.precision), d.Std.Format(r.precision), d.Min.Format(r.precision),
			d.P25.Format(r.precision), d.P50.Format(r.precision), d.P75.Format(r.precision),
			d.Max.Format(r.precision),
		}
	}
	table(b, []string{"field", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, rows)
}

func (r *ReportRenderer) records(b *strings.Builder, t survey.Table, extraHeader string, extra []string) {
	header := append([]string{"source", "line"}, t.Columns...)
	if extraHeader != "" {
		header = append(header, extraHeader)
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := append([]string{row.Source, strconv.Itoa(row.Line)}, row.Values...)
		if extraHeader != "" && i < len(extra) {
			cells = append(cells, extra[i])
		}
		rows[i] = cells
	}
	table(b, header, r.capRows(rows))
	if r.maxRows > 0 && len(rows) > r.maxRows {
		fmt.Fprintf(b, "_%d more rows omitted._\n\n", len(rows)-r.maxRows)
	}
}

func (r *ReportRenderer) capRows(rows [][]string) [][]string {
	if r.maxRows > 0 && len(rows) > r.maxRows {
		return rows[:r.maxRows]
	}
	return rows
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(escape(header), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(escape(row), " | ") + " |\n")
	}
	b.WriteString("\n")
}

func escape(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(c, "|", `\|`), "\n", " ")
	}
	return out
}
