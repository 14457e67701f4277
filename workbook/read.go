package workbook

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// documentFormat represents the detected container format of a spreadsheet file.
type documentFormat int

const (
	formatUnknown documentFormat = iota
	formatOLE2                   // binary .xls (magic: d0cf11e0a1b11ae1)
	formatOOXML                  // ZIP-based .xlsx (magic: 504b0304)
)

// detectFormat reads the first bytes of a file and returns the detected format.
func detectFormat(path string) (documentFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, err
	}
	defer f.Close()

	buf := make([]byte, 8)
	n, err := f.Read(buf)
	if err != nil {
		return formatUnknown, err
	}
	if n < 4 {
		return formatUnknown, nil
	}

	// OLE2 Compound Document: d0 cf 11 e0 (full signature: d0cf11e0a1b11ae1)
	if buf[0] == 0xd0 && buf[1] == 0xcf && buf[2] == 0x11 && buf[3] == 0xe0 {
		return formatOLE2, nil
	}

	// ZIP (OOXML): PK\x03\x04
	if buf[0] == 0x50 && buf[1] == 0x4b && buf[2] == 0x03 && buf[3] == 0x04 {
		return formatOOXML, nil
	}

	return formatUnknown, nil
}

// Sheet is one worksheet's values as a rectangular grid. Positions inside
// the used range that hold no cell are EmptyValue.
type Sheet struct {
	Name  string
	Cells [][]CellValue
}

// Rows reports the number of rows in the used range.
func (s *Sheet) Rows() int { return len(s.Cells) }

// Cols reports the number of columns in the used range.
func (s *Sheet) Cols() int {
	if len(s.Cells) == 0 {
		return 0
	}
	return len(s.Cells[0])
}

// At returns the value at a 0-based position, or EmptyValue outside the
// used range.
func (s *Sheet) At(row, col int) CellValue {
	if row < 0 || row >= s.Rows() || col < 0 || col >= s.Cols() {
		return EmptyValue()
	}
	return s.Cells[row][col]
}

// Document is a workbook's worksheets in workbook order.
type Document struct {
	Sheets []Sheet
}

// Sheet returns the named worksheet, matching exactly and case-sensitively.
func (d *Document) Sheet(name string) (*Sheet, bool) {
	for i := range d.Sheets {
		if d.Sheets[i].Name == name {
			return &d.Sheets[i], true
		}
	}
	return nil, false
}

// Load reads the workbook at path into memory. Cell values are the stored
// results; formula cells contribute their cached value and are never
// reevaluated. Number cells whose style is a date format are read as
// DateTime serials.
func Load(path string) (*Document, error) {
	format, err := detectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	switch format {
	case formatOLE2:
		return nil, fmt.Errorf("opening workbook %s: legacy binary .xls is not supported, convert it to .xlsx first", path)
	case formatUnknown:
		return nil, fmt.Errorf("opening workbook %s: not an OOXML spreadsheet", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	conv := &cellConverter{f: f, dateStyles: make(map[int]bool)}
	doc := &Document{}
	for _, name := range f.GetSheetList() {
		sheet, err := readSheet(f, conv, name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		doc.Sheets = append(doc.Sheets, sheet)
	}
	return doc, nil
}

// SheetNames returns the worksheet names at path in workbook order,
// without reading any cells.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func readSheet(f *excelize.File, conv *cellConverter, name string) (Sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, err
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	cells := make([][]CellValue, len(rows))
	for r, row := range rows {
		cells[r] = make([]CellValue, width)
		for c, raw := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return Sheet{}, err
			}
			v, err := conv.value(name, axis, raw)
			if err != nil {
				return Sheet{}, fmt.Errorf("cell %s: %w", axis, err)
			}
			cells[r][c] = v
		}
	}
	return Sheet{Name: name, Cells: cells}, nil
}

// cellConverter maps stored cells to CellValues, memoizing the date-format
// check per style ID.
type cellConverter struct {
	f          *excelize.File
	dateStyles map[int]bool
}

func (cv *cellConverter) value(sheet, axis, raw string) (CellValue, error) {
	ct, err := cv.f.GetCellType(sheet, axis)
	if err != nil {
		return CellValue{}, err
	}
	switch ct {
	case excelize.CellTypeBool:
		return BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		return ErrorValue(raw), nil
	case excelize.CellTypeDate:
		// ISO 8601 text; carried through as text
		return StringValue(raw), nil
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return StringValue(raw), nil
	case excelize.CellTypeFormula:
		// string-typed cached formula result
		return StringValue(raw), nil
	}

	// Plain cells carry no type token: empty means no cell, otherwise the
	// stored text is numeric.
	if raw == "" {
		return EmptyValue(), nil
	}
	num, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return StringValue(raw), nil
	}
	isDate, err := cv.isDateStyle(sheet, axis)
	if err != nil {
		return CellValue{}, err
	}
	if isDate {
		return DateTimeValue(num), nil
	}
	return FloatValue(num), nil
}

func (cv *cellConverter) isDateStyle(sheet, axis string) (bool, error) {
	styleID, err := cv.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, err
	}
	if is, ok := cv.dateStyles[styleID]; ok {
		return is, nil
	}
	style, err := cv.f.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	is := isDateFormat(style)
	cv.dateStyles[styleID] = is
	return is, nil
}

// isDateFormat reports whether a style renders numbers as dates, times or
// durations: the built-in formats 14-22 and 45-47, or a custom format code
// containing date/time tokens.
func isDateFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.NumFmt >= 14 && style.NumFmt <= 22 {
		return true
	}
	if style.NumFmt >= 45 && style.NumFmt <= 47 {
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	return hasDateTokens(*style.CustomNumFmt)
}

// hasDateTokens scans a custom format code for date/time placeholders,
// skipping quoted literals, bracketed sections and escaped characters.
func hasDateTokens(code string) bool {
	inQuote := false
	inBracket := false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			i++
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}
