package workbook

import (
	"fmt"
	"slices"
)

// CellDiff is one cell whose value differs between two documents.
type CellDiff struct {
	Sheet    string
	Row, Col int // 0-based
	Before   CellValue
	After    CellValue
}

// Diff lists the differences between two documents.
type Diff struct {
	SheetNotes []string   // sheet set, order and dimension differences
	Cells      []CellDiff // value differences within sheets both documents have
}

// Count reports the total number of differences.
func (d *Diff) Count() int { return len(d.SheetNotes) + len(d.Cells) }

// CompareDocuments compares two documents cell by cell. Both sides should
// come from Load so that representation differences in the underlying files
// do not show up as value differences. Sheets missing from one side are
// reported as notes; common sheets are compared over the union of their
// used ranges, with positions outside a grid reading as EmptyValue.
func CompareDocuments(before, after *Document) *Diff {
	d := &Diff{}

	if orderNote := sheetOrderNote(before, after); orderNote != "" {
		d.SheetNotes = append(d.SheetNotes, orderNote)
	}

	for i := range before.Sheets {
		bs := &before.Sheets[i]
		as, ok := after.Sheet(bs.Name)
		if !ok {
			d.SheetNotes = append(d.SheetNotes, fmt.Sprintf("sheet %q removed", bs.Name))
			continue
		}
		diffSheet(d, bs, as)
	}
	for i := range after.Sheets {
		if _, ok := before.Sheet(after.Sheets[i].Name); !ok {
			d.SheetNotes = append(d.SheetNotes, fmt.Sprintf("sheet %q added", after.Sheets[i].Name))
		}
	}
	return d
}

func diffSheet(d *Diff, before, after *Sheet) {
	if before.Rows() != after.Rows() || before.Cols() != after.Cols() {
		d.SheetNotes = append(d.SheetNotes, fmt.Sprintf(
			"sheet %q used range changed: %dx%d to %dx%d",
			before.Name, before.Rows(), before.Cols(), after.Rows(), after.Cols()))
	}
	rows := max(before.Rows(), after.Rows())
	cols := max(before.Cols(), after.Cols())
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			bv, av := before.At(r, c), after.At(r, c)
			if bv != av {
				d.Cells = append(d.Cells, CellDiff{
					Sheet: before.Name, Row: r, Col: c, Before: bv, After: av,
				})
			}
		}
	}
}

// sheetOrderNote reports reordering of an otherwise identical sheet set.
// Added or removed sheets are reported separately, not as reordering.
func sheetOrderNote(before, after *Document) string {
	bn, an := sheetNames(before), sheetNames(after)
	if slices.Equal(bn, an) {
		return ""
	}
	bs, as := slices.Clone(bn), slices.Clone(an)
	slices.Sort(bs)
	slices.Sort(as)
	if !slices.Equal(bs, as) {
		return ""
	}
	return fmt.Sprintf("sheet order changed: %v to %v", bn, an)
}

func sheetNames(d *Document) []string {
	names := make([]string, len(d.Sheets))
	for i := range d.Sheets {
		names[i] = d.Sheets[i].Name
	}
	return names
}
