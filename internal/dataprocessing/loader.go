package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/errors"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// Row is a single source record keyed by column name. A nil value is the
// missing marker: empty cells become nil at load time and stay nil through
// every later stage.
type Row map[string]any

// RawTable is an in-memory tabular source, loaded from disk before any
// normalization. Columns preserves the source header order.
type RawTable struct {
	Source  domain.SchemaGeneration
	File    string
	Columns []string
	Rows    []Row
}

// Loader reads trip source files into raw tables. CSV is the primary
// format; XLSX workbooks exported from spreadsheet tools are accepted too.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads one source file into a raw table and classifies its schema
// generation from the header row. A missing or unreadable file is fatal:
// no transformation starts until both sources load cleanly.
func (l *Loader) Load(ctx context.Context, path string) (*RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("source file %s", path))
		}
		return nil, errors.NewStorageError("failed to stat source file", err).
			WithContext("path", path)
	}

	var (
		table *RawTable
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		table, err = l.loadXLSX(ctx, path)
	default:
		table, err = l.loadCSV(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	table.Source = domain.DetectGeneration(table.Columns)
	l.logger.InfoContext(ctx, "loaded trip source",
		slog.String("file", filepath.Base(path)),
		slog.String("schema", string(table.Source)),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))
	return table, nil
}

// LoadPair loads the legacy and current trip sources. The loads are
// independent of each other and run concurrently when parallel is true;
// both must complete before any downstream stage starts. Each file must
// carry the schema generation its position designates.
func (l *Loader) LoadPair(ctx context.Context, legacyPath, currentPath string, parallel bool) (*RawTable, *RawTable, error) {
	var legacy, current *RawTable

	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			table, err := l.Load(gctx, legacyPath)
			if err != nil {
				return fmt.Errorf("load legacy source: %w", err)
			}
			legacy = table
			return nil
		})
		g.Go(func() error {
			table, err := l.Load(gctx, currentPath)
			if err != nil {
				return fmt.Errorf("load current source: %w", err)
			}
			current = table
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		if legacy, err = l.Load(ctx, legacyPath); err != nil {
			return nil, nil, fmt.Errorf("load legacy source: %w", err)
		}
		if current, err = l.Load(ctx, currentPath); err != nil {
			return nil, nil, fmt.Errorf("load current source: %w", err)
		}
	}

	if legacy.Source != domain.SchemaLegacy {
		return nil, nil, errors.NewValidationError(
			fmt.Sprintf("file %s does not use the legacy trip schema", legacyPath)).
			WithContext("detected", string(legacy.Source))
	}
	if current.Source != domain.SchemaCurrent {
		return nil, nil, errors.NewValidationError(
			fmt.Sprintf("file %s does not use the current trip schema", currentPath)).
			WithContext("detected", string(current.Source))
	}
	return legacy, current, nil
}

func (l *Loader) loadCSV(ctx context.Context, path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open source file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Short rows leave their trailing columns missing instead of failing
	// the whole batch.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError("source file has no header row", err).
			WithContext("path", path)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns[i] = strings.TrimSpace(col)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read source row", err).
				WithContext("path", path).
				WithContext("row", len(rows)+2)
		}
		rows = append(rows, cellsToRow(columns, record))
	}

	return &RawTable{File: filepath.Base(path), Columns: columns, Rows: rows}, nil
}

func (l *Loader) loadXLSX(ctx context.Context, path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open xlsx source", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheet := l.findTripSheet(f)
	if sheet == "" {
		return nil, errors.NewParsingError("no worksheet found in xlsx source", nil).
			WithContext("path", path)
	}

	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError("failed to read worksheet rows", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	if len(sheetRows) == 0 {
		return nil, errors.NewParsingError("worksheet has no header row", nil).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	columns := make([]string, len(sheetRows[0]))
	for i, col := range sheetRows[0] {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([]Row, 0, len(sheetRows)-1)
	for _, record := range sheetRows[1:] {
		rows = append(rows, cellsToRow(columns, record))
	}

	l.logger.DebugContext(ctx, "read xlsx worksheet",
		slog.String("file", filepath.Base(path)),
		slog.String("sheet", sheet))
	return &RawTable{File: filepath.Base(path), Columns: columns, Rows: rows}, nil
}

// findTripSheet picks the worksheet holding trip data: a conventionally
// named sheet when one exists, otherwise the workbook's first sheet.
func (l *Loader) findTripSheet(f *excelize.File) string {
	possibleNames := []string{"Trips", "trips", "Data", "data", "Sheet1"}
	for _, name := range possibleNames {
		if index, err := f.GetSheetIndex(name); err == nil && index != -1 {
			return name
		}
	}
	if list := f.GetSheetList(); len(list) > 0 {
		return list[0]
	}
	return ""
}

// cellsToRow maps one record onto the header. Empty cells become nil, and
// cells beyond the header width are ignored.
func cellsToRow(columns []string, record []string) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		if i >= len(record) || record[i] == "" {
			row[col] = nil
			continue
		}
		row[col] = record[i]
	}
	return row
}
