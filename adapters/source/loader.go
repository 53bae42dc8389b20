package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"hfcheck/adapters/excel"
	"hfcheck/domain/core"
	"hfcheck/domain/survey"
	"hfcheck/internal"
	"hfcheck/ports"
)

// Loader fetches every source and parses it into a raw table
type Loader struct {
	fetcher ports.FetcherPort
	na      NASet
	logger  *internal.Logger
}

var _ ports.SourceLoaderPort = (*Loader)(nil)

// NewLoader creates a loader; nil naTokens selects DefaultNATokens
func NewLoader(fetcher ports.FetcherPort, naTokens []string, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Loader{
		fetcher: fetcher,
		na:      NewNASet(naTokens),
		logger:  logger,
	}
}

// Load fetches and parses each source in order. There is no retry and no
// partial result: the first failure is returned.
func (l *Loader) Load(ctx context.Context, sources []survey.Source) ([]survey.RawTable, error) {
	if len(sources) == 0 {
		return nil, core.NewSourceUnavailableError("<none>", fmt.Errorf("no sources configured"))
	}

	tables := make([]survey.RawTable, 0, len(sources))
	for _, src := range sources {
		l.logger.Info("Fetching source %s from %s", src.Name, src.Location)

		data, err := l.fetcher.Fetch(ctx, src.Location)
		if err != nil {
			l.logger.Error("Source %s unavailable: %v", src.Name, err)
			return nil, core.NewSourceUnavailableError(src.Name, err)
		}

		table, err := l.Parse(src, data)
		if err != nil {
			l.logger.Error("Source %s could not be parsed: %v", src.Name, err)
			return nil, err
		}

		l.logger.Info("Loaded source %s: %d rows, %d columns (%s, hash %s)",
			src.Name, table.Summary.Rows, table.Summary.Columns, table.Summary.Format, table.Summary.Hash.Short())
		tables = append(tables, table)
	}
	return tables, nil
}

// Parse turns fetched content into a raw table, choosing the reader by the
// location's extension
func (l *Loader) Parse(src survey.Source, data []byte) (survey.RawTable, error) {
	format := DetectFormat(src.Location)

	var (
		rows [][]string
		err  error
	)
	switch format {
	case survey.FormatXLSX:
		rows, err = excel.ReadWorkbookRows(data)
	default:
		rows, err = ReadCSVRows(data)
	}
	if err != nil {
		return survey.RawTable{}, core.NewSourceUnavailableError(src.Name, err)
	}

	table, err := l.buildTable(src, rows)
	if err != nil {
		return survey.RawTable{}, err
	}
	table.Summary.Format = format
	table.Summary.Hash = core.NewHash(data)
	return table, nil
}

func (l *Loader) buildTable(src survey.Source, rows [][]string) (survey.RawTable, error) {
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return survey.RawTable{}, core.NewMalformedSourceError(src.Name, "missing header row")
	}

	headers := MangleHeaders(rows[0])
	table := survey.RawTable{
		Headers: headers,
		Rows:    make([]survey.RawRow, 0, len(rows)-1),
	}

	line := 0
	for _, record := range rows[1:] {
		if len(record) == 0 {
			continue
		}
		line++
		if len(record) > len(headers) {
			return survey.RawTable{}, core.NewMalformedSourceError(src.Name,
				fmt.Sprintf("line %d has %d fields, header has %d", line, len(record), len(headers)))
		}

		cells := make([]survey.RawCell, len(headers))
		for i := range headers {
			if i >= len(record) || l.na.IsMissing(record[i]) {
				cells[i] = survey.RawCell{Missing: true}
				continue
			}
			cells[i] = survey.RawCell{Text: record[i]}
		}
		table.Rows = append(table.Rows, survey.RawRow{Line: line, Cells: cells})
	}

	table.Summary = survey.SourceSummary{
		Name:     src.Name,
		Location: src.Location,
		Rows:     len(table.Rows),
		Columns:  len(headers),
	}
	return table, nil
}

// DetectFormat derives the source format from the location's path extension,
// ignoring any query string
func DetectFormat(location string) survey.SourceFormat {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".xlsx") {
		return survey.FormatXLSX
	}
	return survey.FormatCSV
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
