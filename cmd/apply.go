package cmd

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridpatch/gridpatch/internal"
	"github.com/gridpatch/gridpatch/workbook"
)

var (
	applyChangesFile string
	applyOutput      string
	applyKeepBackup  bool
	applyDryRun      bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <file> [address=value ...] [flags]",
	Short: "Apply cell edits to a workbook and save it",
	Long: `Apply cell edits to a workbook and save the result.

The file is replaced through a backup + temp-write + rename sequence: a
failed save leaves it untouched. Formulas are not recalculated and styling
beyond date display formats is not carried over; the output container is
always .xlsx.

Each edit is address=value. Addresses without a sheet name target the
first sheet. Values are typed by shape: integer, float, true/false, null
(blank the cell), an error literal such as #DIV/0!, a datetime
(2024-01-15 or "2024-01-15 10:00:00"), otherwise text. Edits addressing
cells outside a sheet's used range are skipped with a note; they never
fail the save.

Examples:
  gridpatch apply report.xlsx "Sheet1!B2=31"
  gridpatch apply report.xlsx "B2=31" "C3=hello"
  gridpatch apply report.xlsx "Sheet1!D4=null"                 # blank the cell
  gridpatch apply report.xlsx "Sheet1!D4=2024-01-15 10:00:00"  # datetime
  gridpatch apply report.xlsx --changes edits.yaml
  gridpatch apply report.xlsx --dry-run "Sheet1!B2=31"
  gridpatch apply report.xlsx -o patched.xlsx "Sheet1!B2=31"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyChangesFile, "changes", "", "JSON or YAML file of cell edits")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Write the result here instead of replacing <file>")
	applyCmd.Flags().BoolVar(&applyKeepBackup, "keep-backup", false, "Keep the .bak file after a successful save (env: GRIDPATCH_KEEP_BACKUP)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Merge and report without writing anything")
	rootCmd.AddCommand(applyCmd)
}

// editArg is one parsed address=value argument.
type editArg struct {
	sheet    string // empty targets the first sheet
	row, col int    // 0-based
	value    workbook.CellValue
}

// parseEditArg parses "Sheet1!B2=31" into a position and a typed value.
// The split is on the first '=' after '!' so quoted sheet names survive.
func parseEditArg(arg string) (editArg, error) {
	start := strings.IndexByte(arg, '!')
	if start < 0 {
		start = 0
	}
	idx := strings.IndexByte(arg[start:], '=')
	if idx < 0 {
		return editArg{}, fmt.Errorf("invalid edit %q: expected address=value", arg)
	}
	idx += start
	address := arg[:idx]
	remainder := arg[idx+1:]

	if address == "" {
		return editArg{}, fmt.Errorf("invalid edit %q: empty address", arg)
	}

	sheet, ref, hasSheet := strings.Cut(address, "!")
	if !hasSheet {
		sheet, ref = "", address
	} else {
		sheet = strings.Trim(sheet, "'")
		if sheet == "" {
			return editArg{}, fmt.Errorf("invalid edit %q: empty sheet name", arg)
		}
	}

	col, row, err := internal.ParseCellRef(ref)
	if err != nil {
		return editArg{}, fmt.Errorf("invalid edit %q: %w", arg, err)
	}
	return editArg{sheet: sheet, row: row - 1, col: col - 1, value: parseEditValue(remainder)}, nil
}

// parseEditValue types a value by shape: integer, float, boolean, null,
// error literal, datetime, otherwise text. "null" blanks the cell; an
// empty remainder is the empty string, which writes a present blank cell.
func parseEditValue(s string) workbook.CellValue {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return workbook.IntValue(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return workbook.FloatValue(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return workbook.BoolValue(true)
	case "false":
		return workbook.BoolValue(false)
	case "null":
		return workbook.EmptyValue()
	}
	if isErrorLiteral(s) {
		return workbook.ErrorValue(strings.ToUpper(s))
	}
	if t, ok := parseDateTime(s); ok {
		return workbook.DateTimeValue(workbook.ExcelSerial(t))
	}
	return workbook.StringValue(s)
}

// cellErrorLiterals are the error texts a cell can hold.
var cellErrorLiterals = map[string]bool{
	"#NULL!": true, "#DIV/0!": true, "#VALUE!": true, "#REF!": true,
	"#NAME?": true, "#NUM!": true, "#N/A": true, "#SPILL!": true, "#CALC!": true,
}

func isErrorLiteral(s string) bool {
	return cellErrorLiterals[strings.ToUpper(s)]
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// applyReport is the --json shape of a save.
type applyReport struct {
	File           string `json:"file"`
	Sheets         int    `json:"sheets"`
	CellsWritten   int    `json:"cells_written"`
	EditsApplied   int    `json:"edits_applied"`
	EditsUnmatched int    `json:"edits_unmatched,omitempty"`
	BackupPath     string `json:"backup_path,omitempty"`
	DryRun         bool   `json:"dry_run,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	cs := workbook.NewChangeset()
	if applyChangesFile != "" {
		if len(args) > 1 {
			return fmt.Errorf("positional edit args are not allowed with --changes")
		}
		if err := loadChangesFile(applyChangesFile, cs); err != nil {
			return err
		}
	} else {
		if len(args) < 2 {
			return fmt.Errorf("at least one edit argument is required")
		}
		edits := make([]editArg, 0, len(args)-1)
		needFirst := false
		for _, arg := range args[1:] {
			e, err := parseEditArg(arg)
			if err != nil {
				return err
			}
			if e.sheet == "" {
				needFirst = true
			}
			edits = append(edits, e)
		}
		first := ""
		if needFirst {
			names, err := workbook.SheetNames(filePath)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("%s has no sheets", filePath)
			}
			first = names[0]
		}
		for _, e := range edits {
			sheet := e.sheet
			if sheet == "" {
				sheet = first
			}
			cs.Set(workbook.Coordinate{Sheet: sheet, Row: e.row, Col: e.col}, workbook.Edit{Value: e.value})
		}
	}

	dst := filePath
	if applyOutput != "" {
		dst = applyOutput
	}
	if ext := strings.ToLower(filepath.Ext(dst)); ext != "" && ext != ".xlsx" {
		note("the output container is .xlsx despite the %s extension", ext)
	}

	saver := workbook.NewSaver()
	saver.KeepBackup = resolveKeepBackup(cmd.Flags().Lookup("keep-backup"))
	saver.DryRun = applyDryRun

	res, err := saver.SaveWithChangesTo(filePath, dst, cs)
	if err != nil {
		return err
	}

	if res.EditsUnmatched > 0 {
		note("%d of %d edits addressed cells outside the used range and were skipped", res.EditsUnmatched, cs.Len())
	}

	if jsonOutput {
		return jsonPrint(applyReport{
			File:           dst,
			Sheets:         res.Sheets,
			CellsWritten:   res.CellsWritten,
			EditsApplied:   res.EditsApplied,
			EditsUnmatched: res.EditsUnmatched,
			BackupPath:     res.BackupPath,
			DryRun:         applyDryRun,
		})
	}

	if applyDryRun {
		fmt.Printf("Dry run: %d of %d edits match %s. Nothing written.\n", res.EditsApplied, cs.Len(), filePath)
		return nil
	}
	fmt.Printf("Applied %d edits to %s (%d sheets, %d cells written).\n", res.EditsApplied, dst, res.Sheets, res.CellsWritten)
	if res.BackupPath != "" {
		fmt.Printf("Backup kept at %s.\n", res.BackupPath)
	}
	return nil
}
