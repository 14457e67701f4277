package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// dateTimeNumFmt is the display format applied to DateTime cells in the
// output document.
const dateTimeNumFmt = "yyyy-mm-dd hh:mm:ss"

// outputBook accumulates the output workbook. Sheets are appended in
// workbook order and never revisited.
type outputBook struct {
	f             *excelize.File
	dateStyle     int
	haveDateStyle bool
}

func newOutputBook() *outputBook {
	return &outputBook{f: excelize.NewFile()}
}

// addSheet appends the sheet at the given workbook position. The writer
// starts every new workbook with a default sheet, so the first sheet is a
// rename rather than an insertion.
func (b *outputBook) addSheet(name string, index int) error {
	if index == 0 {
		if name == "Sheet1" {
			return nil
		}
		return b.f.SetSheetName("Sheet1", name)
	}
	_, err := b.f.NewSheet(name)
	return err
}

// writeCell writes one value at a 0-based position. Every value reaching
// the output, edited or passed through, goes through this one conversion:
// Empty writes an explicit blank string (edits use it to blank a cell),
// Int widens to float64 since the cell store is float64-backed, Error
// writes its text, DateTime writes the serial styled with dateTimeNumFmt.
func (b *outputBook) writeCell(sheet string, row, col int, v CellValue) error {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := b.setValue(sheet, axis, v); err != nil {
		return fmt.Errorf("cell %s: %w", axis, err)
	}
	return nil
}

func (b *outputBook) setValue(sheet, axis string, v CellValue) error {
	switch v.kind {
	case KindEmpty:
		return b.f.SetCellStr(sheet, axis, "")
	case KindString:
		return b.f.SetCellStr(sheet, axis, v.str)
	case KindInt:
		// widening: values beyond 2^53 lose precision in the float64 store
		return b.f.SetCellFloat(sheet, axis, float64(v.i), -1, 64)
	case KindFloat:
		return b.f.SetCellFloat(sheet, axis, v.num, -1, 64)
	case KindBool:
		return b.f.SetCellBool(sheet, axis, v.b)
	case KindError:
		return b.f.SetCellStr(sheet, axis, v.str)
	case KindDateTime:
		if err := b.f.SetCellFloat(sheet, axis, v.num, -1, 64); err != nil {
			return err
		}
		style, err := b.dateStyleID()
		if err != nil {
			return err
		}
		return b.f.SetCellStyle(sheet, axis, axis, style)
	}
	return fmt.Errorf("unhandled value kind %d", v.kind)
}

// dateStyleID returns the shared DateTime cell style, creating it on first
// use.
func (b *outputBook) dateStyleID() (int, error) {
	if b.haveDateStyle {
		return b.dateStyle, nil
	}
	code := dateTimeNumFmt
	id, err := b.f.NewStyle(&excelize.Style{CustomNumFmt: &code})
	if err != nil {
		return 0, err
	}
	b.dateStyle = id
	b.haveDateStyle = true
	return id, nil
}

func (b *outputBook) bytes() (*bytes.Buffer, error) {
	return b.f.WriteToBuffer()
}

func (b *outputBook) close() error {
	return b.f.Close()
}
