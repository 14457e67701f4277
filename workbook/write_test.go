package workbook

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestOutputBookSheetOrder(t *testing.T) {
	b := newOutputBook()
	defer b.close()
	for i, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := b.addSheet(name, i); err != nil {
			t.Fatalf("addSheet(%s): %v", name, err)
		}
	}

	buf, err := b.bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	got := f.GetSheetList()
	want := []string{"Zeta", "Alpha", "Mid"}
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}
}

func TestWriteCellKinds(t *testing.T) {
	b := newOutputBook()
	defer b.close()
	if err := b.addSheet("Sheet1", 0); err != nil {
		t.Fatalf("addSheet: %v", err)
	}

	writes := []struct {
		row, col int
		v        CellValue
	}{
		{0, 0, StringValue("hi")},
		{0, 1, IntValue(7)},
		{0, 2, FloatValue(2.5)},
		{0, 3, BoolValue(true)},
		{0, 4, ErrorValue("#N/A")},
		{0, 5, DateTimeValue(45306.5)},
		{1, 0, EmptyValue()}, // an edit blanking a cell
	}
	for _, w := range writes {
		if err := b.writeCell("Sheet1", w.row, w.col, w.v); err != nil {
			t.Fatalf("writeCell(%d,%d): %v", w.row, w.col, err)
		}
	}

	buf, err := b.bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	values := []struct {
		cell string
		want string
	}{
		{"A1", "hi"},
		{"B1", "7"},
		{"C1", "2.5"},
		{"D1", "1"},
		{"E1", "#N/A"},
		{"F1", "45306.5"},
		{"A2", ""},
	}
	for _, v := range values {
		got, err := f.GetCellValue("Sheet1", v.cell, raw)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", v.cell, err)
		}
		if got != v.want {
			t.Errorf("%s = %q, want %q", v.cell, got, v.want)
		}
	}

	// error values are carried as text, not native error cells
	if ct, err := f.GetCellType("Sheet1", "E1"); err != nil || ct == excelize.CellTypeError {
		t.Errorf("E1 type = %v (err %v), want a text type", ct, err)
	}
	// a blanked cell is present, unlike a never-written one
	if ct, err := f.GetCellType("Sheet1", "A2"); err != nil || ct == excelize.CellTypeUnset {
		t.Errorf("A2 type = %v (err %v), want a present cell", ct, err)
	}
	if ct, err := f.GetCellType("Sheet1", "B2"); err != nil || ct != excelize.CellTypeUnset {
		t.Errorf("B2 type = %v (err %v), want unset", ct, err)
	}

	styleID, err := f.GetCellStyle("Sheet1", "F1")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if style.CustomNumFmt == nil || *style.CustomNumFmt != dateTimeNumFmt {
		t.Errorf("F1 number format = %v, want %q", style.CustomNumFmt, dateTimeNumFmt)
	}
}
