// Package workbook applies sparse cell edits to spreadsheet documents and
// persists the result without corrupting the original file.
package workbook

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind identifies which variant a CellValue holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindError
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	case KindDateTime:
		return "datetime"
	}
	return "unknown"
}

// CellValue is the value of a single cell. The zero value is the empty cell.
// CellValues are comparable; two are equal when kind and payload match.
type CellValue struct {
	kind Kind
	str  string  // string, error
	num  float64 // float, datetime serial
	i    int64   // int
	b    bool    // bool
}

// EmptyValue returns the empty cell value. As an edit it blanks the target
// cell; as a source value it means the cell is absent.
func EmptyValue() CellValue { return CellValue{} }

// StringValue returns a text cell value. StringValue("") is a present, blank
// cell and is distinct from EmptyValue.
func StringValue(s string) CellValue { return CellValue{kind: KindString, str: s} }

// IntValue returns an integer cell value.
func IntValue(n int64) CellValue { return CellValue{kind: KindInt, i: n} }

// FloatValue returns a floating-point cell value.
func FloatValue(f float64) CellValue { return CellValue{kind: KindFloat, num: f} }

// BoolValue returns a boolean cell value.
func BoolValue(b bool) CellValue { return CellValue{kind: KindBool, b: b} }

// ErrorValue returns an error cell value such as #DIV/0! or #N/A.
func ErrorValue(text string) CellValue { return CellValue{kind: KindError, str: text} }

// DateTimeValue returns a date/time cell value holding an Excel serial
// (whole days since the 1900 epoch, fraction of day for the time part).
func DateTimeValue(serial float64) CellValue { return CellValue{kind: KindDateTime, num: serial} }

// Kind reports which variant v holds.
func (v CellValue) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the empty cell value.
func (v CellValue) IsEmpty() bool { return v.kind == KindEmpty }

// String renders the display form of v: integers and floats in decimal
// notation, booleans as TRUE/FALSE, datetimes as "2006-01-02 15:04:05".
func (v CellValue) String() string {
	switch v.kind {
	case KindString, KindError:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindDateTime:
		return ExcelTime(v.num).Format("2006-01-02 15:04:05")
	}
	return ""
}

// MarshalJSON renders empty cells as null, numeric/boolean/text cells as the
// matching JSON scalar, and error and datetime cells as their display string.
func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	}
	return json.Marshal(v.String())
}

// 1899-12-30T00:00:00Z. Serial day arithmetic uses this epoch because the
// format inherits the Lotus 1-2-3 bug that treats 1900 as a leap year:
// serial 60 names the nonexistent 1900-02-29, so serials below 61 are one
// day short of the epoch distance.
const excelEpochUnix = -2209161600

// ExcelTime converts an Excel serial value to a UTC time, rounded to the
// nearest millisecond. Serials 60 and 61 both map to 1900-03-01.
func ExcelTime(serial float64) time.Time {
	if serial < 61 {
		serial++
	}
	ms := int64(math.Round(serial * 86400 * 1000))
	return time.Unix(excelEpochUnix+ms/1000, ms%1000*int64(time.Millisecond)).UTC()
}

// ExcelSerial converts a time to its Excel serial value.
func ExcelSerial(t time.Time) float64 {
	days := (float64(t.Unix()-excelEpochUnix) + float64(t.Nanosecond())/1e9) / 86400
	if days < 61 {
		days--
	}
	return days
}
