package excel

import (
	"fmt"
	"io"
	"strings"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"

	"github.com/xuri/excelize/v2"
)

// Fixed sheet names of the report workbook; one sheet per module follows
const (
	SheetGeneral    = "General"
	SheetDuration   = "Duration"
	SheetDuplicates = "Duplicates"
	SheetMissing    = "Missing Values"
)

const maxSheetName = 31

// ReportWriter renders an audit report as an XLSX workbook
type ReportWriter struct {
	precision int
}

// NewReportWriter creates a writer; statistics are rounded to precision digits
func NewReportWriter(precision int) *ReportWriter {
	if precision < 0 {
		precision = 4
	}
	return &ReportWriter{precision: precision}
}

// SheetNames returns the sheet names a report produces, in order
func (w *ReportWriter) SheetNames(report *quality.AuditReport) []string {
	names := []string{SheetGeneral, SheetDuration, SheetDuplicates, SheetMissing}
	return append(names, moduleSheetNames(report.Modules)...)
}

// Write renders the report into out
func (w *ReportWriter) Write(report *quality.AuditReport, out io.Writer) error {
	f, err := w.build(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile renders the report to a file path
func (w *ReportWriter) WriteFile(report *quality.AuditReport, path string) error {
	f, err := w.build(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (w *ReportWriter) build(report *quality.AuditReport) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{file: f, bold: bold}

	if err := f.SetSheetName("Sheet1", SheetGeneral); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}

	steps := []func() error{
		func() error { return sw.table(SheetGeneral, 1, report.Overview, nil) },
		func() error { return w.writeDuration(sw, report) },
		func() error { return sw.table(SheetDuplicates, 1, report.DuplicateTable, nil) },
		func() error { return w.writeMissing(sw, SheetMissing, 1, report.Missing) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	sheets := moduleSheetNames(report.Modules)
	for i, m := range report.Modules {
		if err := w.writeModule(sw, sheets[i], m); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (w *ReportWriter) writeDuration(sw *sheetWriter, report *quality.AuditReport) error {
	reasons := make([]interface{}, len(report.Duration.Flagged))
	for i, fl := range report.Duration.Flagged {
		reasons[i] = string(fl.Reason)
	}
	return sw.table(SheetDuration, 1, report.DurationTable, &extraColumn{header: "reason", values: reasons})
}

func (w *ReportWriter) writeMissing(sw *sheetWriter, sheet string, row int, missing quality.MissingValueReport) error {
	rows := [][]interface{}{{"field", "missing", "missing_pct"}}
	for _, e := range missing.Entries {
		rows = append(rows, []interface{}{e.Field, e.MissingCount, e.MissingPct})
	}
	return sw.rows(sheet, row, rows)
}

func (w *ReportWriter) writeModule(sw *sheetWriter, sheet string, m quality.ModuleReport) error {
	if err := w.writeMissing(sw, sheet, 1, m.Missing); err != nil {
		return err
	}
	row := len(m.Missing.Entries) + 3

	header := []interface{}{"field"}
	for _, c := range m.Categories.Categories {
		header = append(header, survey.FormatNumber(c))
	}
	rows := [][]interface{}{header}
	for _, d := range m.Categories.Distributions {
		line := []interface{}{d.Field}
		for _, c := range m.Categories.Categories {
			line = append(line, d.Percent(c))
		}
		rows = append(rows, line)
	}
	if err := sw.rows(sheet, row, rows); err != nil {
		return err
	}
	row += len(rows) + 1

	rows = [][]interface{}{{"field", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, d := range m.Descriptive {
		rows = append(rows, []interface{}{
			d.Field, d.Count,
			w.cell(d.Mean), w.cell(d.Std), w.cell(d.Min),
			w.cell(d.P25), w.cell(d.P50), w.cell(d.P75), w.cell(d.Max),
		})
	}
	return sw.rows(sheet, row, rows)
}

// cell writes computed statistics as numbers and the rest as their marker text
func (w *ReportWriter) cell(c quality.Cell) interface{} {
	if c.Ok() {
		return c.Value
	}
	return c.Format(w.precision)
}

type extraColumn struct {
	header string
	values []interface{}
}

type sheetWriter struct {
	file *excelize.File
	bold int
}

func (sw *sheetWriter) ensure(sheet string) error {
	idx, err := sw.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %s: %w", sheet, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := sw.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return nil
}

// rows writes a block starting at row; the first row is styled as a header
func (sw *sheetWriter) rows(sheet string, row int, rows [][]interface{}) error {
	if err := sw.ensure(sheet); err != nil {
		return err
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row+i)
		if err != nil {
			return err
		}
		values := values
		if err := sw.file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
		if i == 0 && len(values) > 0 {
			last, err := excelize.CoordinatesToCellName(len(values), row)
			if err != nil {
				return err
			}
			if err := sw.file.SetCellStyle(sheet, cell, last, sw.bold); err != nil {
				return fmt.Errorf("failed to style %s header: %w", sheet, err)
			}
		}
	}
	return nil
}

func (sw *sheetWriter) table(sheet string, row int, table survey.Table, extra *extraColumn) error {
	header := []interface{}{"source", "line"}
	for _, c := range table.Columns {
		header = append(header, c)
	}
	if extra != nil {
		header = append(header, extra.header)
	}

	rows := [][]interface{}{header}
	for i, r := range table.Rows {
		line := []interface{}{r.Source, r.Line}
		for _, v := range r.Values {
			line = append(line, v)
		}
		if extra != nil && i < len(extra.values) {
			line = append(line, extra.values[i])
		}
		rows = append(rows, line)
	}
	return sw.rows(sheet, row, rows)
}

func sheetName(label string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, label)
	if name == "" {
		name = "Module"
	}
	return truncate(name, maxSheetName)
}

// moduleSheetNames gives each module its own sheet. Excel compares sheet
// names case-insensitively, so a name that collides with a fixed sheet or an
// earlier module gets a " (n)" suffix within the length limit.
func moduleSheetNames(modules []quality.ModuleReport) []string {
	taken := map[string]bool{}
	for _, s := range []string{SheetGeneral, SheetDuration, SheetDuplicates, SheetMissing} {
		taken[strings.ToLower(s)] = true
	}

	names := make([]string, len(modules))
	for i, m := range modules {
		base := sheetName(m.Module.Label)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
