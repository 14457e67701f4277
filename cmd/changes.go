package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridpatch/gridpatch/internal"
	"github.com/gridpatch/gridpatch/workbook"
)

// changeEntry is one edit in a --changes file. Cell must carry a sheet
// name; the value keeps whatever type the file gives it.
type changeEntry struct {
	Cell  string `json:"cell" yaml:"cell"`
	Value any    `json:"value" yaml:"value"`
}

// loadChangesFile reads a JSON or YAML list of {cell, value} entries into
// the changeset. The format is sniffed from the first byte.
func loadChangesFile(path string, cs *workbook.Changeset) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading changes file: %w", err)
	}

	var entries []changeEntry
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s holds no edits", path)
	}

	for i, e := range entries {
		sheet, ref, ok := strings.Cut(e.Cell, "!")
		if !ok {
			return fmt.Errorf("%s entry %d: cell %q must name a sheet, like Sheet1!B2", path, i+1, e.Cell)
		}
		sheet = strings.Trim(sheet, "'")
		if sheet == "" {
			return fmt.Errorf("%s entry %d: cell %q has an empty sheet name", path, i+1, e.Cell)
		}
		col, row, err := internal.ParseCellRef(ref)
		if err != nil {
			return fmt.Errorf("%s entry %d: cell %q: %w", path, i+1, e.Cell, err)
		}
		v, err := coerceChangeValue(e.Value)
		if err != nil {
			return fmt.Errorf("%s entry %d (%s): %w", path, i+1, e.Cell, err)
		}
		cs.Set(workbook.Coordinate{Sheet: sheet, Row: row - 1, Col: col - 1}, workbook.Edit{Value: v})
	}
	return nil
}

// coerceChangeValue maps a decoded file value to a cell value. Scalars
// keep their type; strings are sniffed for error literals and datetimes
// since JSON cannot express either natively.
func coerceChangeValue(v any) (workbook.CellValue, error) {
	switch x := v.(type) {
	case nil:
		return workbook.EmptyValue(), nil
	case bool:
		return workbook.BoolValue(x), nil
	case int:
		return workbook.IntValue(int64(x)), nil
	case int64:
		return workbook.IntValue(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return workbook.FloatValue(float64(x)), nil
		}
		return workbook.IntValue(int64(x)), nil
	case float64:
		return workbook.FloatValue(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return workbook.IntValue(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return workbook.CellValue{}, fmt.Errorf("invalid number %q", x.String())
		}
		return workbook.FloatValue(f), nil
	case time.Time:
		// yaml resolves bare ISO timestamps to time.Time
		return workbook.DateTimeValue(workbook.ExcelSerial(x)), nil
	case string:
		if isErrorLiteral(x) {
			return workbook.ErrorValue(strings.ToUpper(x)), nil
		}
		if t, ok := parseDateTime(x); ok {
			return workbook.DateTimeValue(workbook.ExcelSerial(t)), nil
		}
		return workbook.StringValue(x), nil
	default:
		return workbook.CellValue{}, fmt.Errorf("unsupported value type %T", v)
	}
}
