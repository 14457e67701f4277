package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gridpatch/gridpatch/workbook"
)

func writeChangesFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func changesetValue(t *testing.T, cs *workbook.Changeset, sheet string, row, col int) workbook.CellValue {
	t.Helper()
	for _, e := range cs.EditsForSheet(sheet) {
		if e.Row == row && e.Col == col {
			return e.Edit.Value
		}
	}
	t.Fatalf("no edit recorded for %s (%d,%d)", sheet, row, col)
	return workbook.CellValue{}
}

func TestLoadChangesFileYAML(t *testing.T) {
	path := writeChangesFile(t, "edits.yaml", `
- cell: Sheet1!B2
  value: 31
- cell: Sheet1!C3
  value: hello
- cell: Data!A1
  value: true
- cell: Sheet1!D4
  value: null
- cell: Sheet1!E5
  value: 2024-01-15 10:00:00
- cell: Sheet1!F6
  value: "#DIV/0!"
- cell: Sheet1!G7
  value: 2.5
`)

	cs := workbook.NewChangeset()
	if err := loadChangesFile(path, cs); err != nil {
		t.Fatalf("loadChangesFile returned error: %v", err)
	}
	if cs.Len() != 7 {
		t.Fatalf("Len = %d, want 7", cs.Len())
	}

	checks := []struct {
		sheet    string
		row, col int
		want     workbook.CellValue
	}{
		{"Sheet1", 1, 1, workbook.IntValue(31)},
		{"Sheet1", 2, 2, workbook.StringValue("hello")},
		{"Data", 0, 0, workbook.BoolValue(true)},
		{"Sheet1", 3, 3, workbook.EmptyValue()},
		{"Sheet1", 4, 4, workbook.DateTimeValue(workbook.ExcelSerial(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))},
		{"Sheet1", 5, 5, workbook.ErrorValue("#DIV/0!")},
		{"Sheet1", 6, 6, workbook.FloatValue(2.5)},
	}
	for _, c := range checks {
		if got := changesetValue(t, cs, c.sheet, c.row, c.col); got != c.want {
			t.Errorf("%s (%d,%d) = %v (%s), want %v (%s)", c.sheet, c.row, c.col, got, got.Kind(), c.want, c.want.Kind())
		}
	}
}

func TestLoadChangesFileJSON(t *testing.T) {
	path := writeChangesFile(t, "edits.json", `[
  {"cell": "Sheet1!B2", "value": 31},
  {"cell": "Sheet1!C3", "value": 2.5},
  {"cell": "Sheet1!D4", "value": null},
  {"cell": "Sheet1!E5", "value": "2024-01-15"},
  {"cell": "Sheet1!F6", "value": "#N/A"}
]`)

	cs := workbook.NewChangeset()
	if err := loadChangesFile(path, cs); err != nil {
		t.Fatalf("loadChangesFile returned error: %v", err)
	}

	edits := cs.EditsForSheet("Sheet1")
	if len(edits) != 5 {
		t.Fatalf("got %d edits, want 5", len(edits))
	}
	wants := []workbook.CellValue{
		workbook.IntValue(31),
		workbook.FloatValue(2.5),
		workbook.EmptyValue(),
		workbook.DateTimeValue(workbook.ExcelSerial(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))),
		workbook.ErrorValue("#N/A"),
	}
	for i, e := range edits {
		if e.Edit.Value != wants[i] {
			t.Errorf("edit %d = %v (%s), want %v (%s)", i, e.Edit.Value, e.Edit.Value.Kind(), wants[i], wants[i].Kind())
		}
	}
}

func TestLoadChangesFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"missing sheet", "- cell: B2\n  value: 1\n", "must name a sheet"},
		{"bad cell reference", "- cell: Sheet1!x\n  value: 1\n", "invalid cell reference"},
		{"empty file", "", "holds no edits"},
		{"empty list", "[]", "holds no edits"},
		{"malformed yaml", "cell: [\n", "parsing"},
		{"malformed json", `[{"cell": }]`, "parsing"},
		{"mapping value", "- cell: Sheet1!A1\n  value: {a: 1}\n", "unsupported value type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := workbook.NewChangeset()
			err := loadChangesFile(writeChangesFile(t, "edits", tt.content), cs)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}
