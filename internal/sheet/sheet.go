// Package sheet reads spreadsheet exports into header names and raw rows.
// Workbooks keep their cell types: numeric cells, including dates stored as
// serials, come back as numbers. CSV files are all text.
package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/internal/schema"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/constants"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header row and the data rows below it.
type Table struct {
	Source string
	Sheet  string
	// HeaderRow is the 1-based row number of the header.
	HeaderRow int
	Headers   []string
	Rows      []record.RawRow
	// Blank counts the data rows left out because every cell is empty.
	// Rows plus Blank is the number of lines below the header.
	Blank int
}

// Options select what to read from a file.
type Options struct {
	// Sheet names the worksheet of a workbook; empty reads the first one.
	Sheet string
	// HeaderRow is the 1-based header row; 0 detects it.
	HeaderRow int
	// Resolve is applied when detecting the header row.
	Resolve schema.Options
}

// ReadFile reads an .xlsx, .xlsm or .csv export and splits it into headers
// and rows. Blank data rows are dropped and counted in Table.Blank.
func ReadFile(logger *zap.Logger, path string, aliases *synonym.Table, opts Options) (Table, error) {
	if _, err := fileKind(path); err != nil {
		return Table{Source: path}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{Source: path}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(logger, path, f, aliases, opts)
}

// Read is ReadFile for an export already opened, such as an upload. The
// extension of name selects the format.
func Read(logger *zap.Logger, name string, r io.Reader, aliases *synonym.Table, opts Options) (Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := Table{Source: name}
	kind, err := fileKind(name)
	if err != nil {
		return table, err
	}

	var grid [][]record.Cell
	switch kind {
	case kindWorkbook:
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return table, fmt.Errorf("failed to open workbook %s: %w", name, err)
		}
		defer wb.Close()
		table.Sheet, grid, err = readWorkbook(wb, name, opts.Sheet)
		if err != nil {
			return table, err
		}
	default:
		grid, err = ReadCSV(r)
		if err != nil {
			return table, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	header := opts.HeaderRow - 1
	if opts.HeaderRow <= 0 {
		header, err = DetectHeader(aliases, grid, opts.Resolve)
		if err != nil {
			return table, fmt.Errorf("%s: %w", name, err)
		}
	}
	if header >= len(grid) {
		return table, fmt.Errorf("%s: header row %d is past the last row %d", name, header+1, len(grid))
	}

	table.HeaderRow = header + 1
	table.Headers, table.Rows, table.Blank = Split(grid, header)
	logger.Debug("read input",
		zap.String("op", "sheet.Read"),
		zap.String("file", name),
		zap.String("sheet", table.Sheet),
		zap.Int("header_row", table.HeaderRow),
		zap.Int("rows", len(table.Rows)),
		zap.Int("blank_rows", table.Blank),
	)
	return table, nil
}

const (
	kindWorkbook = "workbook"
	kindCSV      = "csv"
)

func fileKind(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return kindWorkbook, nil
	case ".csv", ".txt":
		return kindCSV, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

func readWorkbook(f *excelize.File, name, sheet string) (string, [][]record.Cell, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", nil, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	grid := make([][]record.Cell, len(rows))
	for r, row := range rows {
		cells := make([]record.Cell, len(row))
		for c, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return sheet, nil, err
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				return sheet, nil, fmt.Errorf("failed to read cell %s: %w", axis, err)
			}
			cells[c] = typedCell(typ, value)
		}
		grid[r] = cells
	}
	return sheet, grid, nil
}

func typedCell(typ excelize.CellType, value string) record.Cell {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return record.NumberCell(n)
		}
	}
	return record.CellFromString(value)
}

// ReadCSV reads every record of a CSV stream as text cells. A leading UTF-8
// byte order mark is dropped and rows may have differing lengths.
func ReadCSV(r io.Reader) ([][]record.Cell, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]record.Cell
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cells := make([]record.Cell, len(fields))
		for i, f := range fields {
			cells[i] = record.CellFromString(f)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// DetectHeader returns the 0-based index of the first row, among the first
// few, whose cells resolve every required field. When none does, the error
// wraps the resolution failure of the closest candidate.
func DetectHeader(aliases *synonym.Table, grid [][]record.Cell, opts schema.Options) (int, error) {
	if aliases == nil {
		aliases = synonym.Default()
	}
	limit := constants.HeaderScanRows
	if limit > len(grid) {
		limit = len(grid)
	}

	if limit == 0 {
		return 0, errors.New("no header row found in an empty sheet")
	}

	var closest *schema.SchemaResolutionError
	var last error
	for i := 0; i < limit; i++ {
		_, _, err := schema.ResolveWithOptions(aliases, headerNames(grid[i]), opts)
		if err == nil {
			return i, nil
		}
		last = err
		var e *schema.SchemaResolutionError
		if errors.As(err, &e) && (closest == nil || len(e.Missing) < len(closest.Missing)) {
			closest = e
		}
	}
	if closest != nil {
		last = closest
	}
	return 0, fmt.Errorf("no header row found in the first %d rows: %w", limit, last)
}

// Split returns the header names at row header and the data rows below it,
// without blank rows, along with the number of blank rows skipped. Row
// indexes count data rows from 0, blank ones included, so they stay aligned
// with the sheet.
func Split(grid [][]record.Cell, header int) ([]string, []record.RawRow, int) {
	headers := headerNames(grid[header])
	var rows []record.RawRow
	blank := 0
	for i, cells := range grid[header+1:] {
		row := record.RawRow{Index: i, Cells: cells}
		if row.IsBlank() {
			blank++
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, blank
}

func headerNames(cells []record.Cell) []string {
	names := make([]string, len(cells))
	for i, c := range cells {
		names[i] = strings.TrimSpace(c.String())
	}
	return names
}
