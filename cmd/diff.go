package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gridpatch/gridpatch/internal"
	"github.com/gridpatch/gridpatch/workbook"
)

var diffCmd = &cobra.Command{
	Use:   "diff <file-a> <file-b>",
	Short: "Compare the cell values of two workbooks",
	Long: `Compare two workbooks cell by cell.

Sheet-level changes (sheets added or removed, reordered, used ranges
resized) print as notes; value changes print one line per cell. Exits 0
when the workbooks match and 2 when they differ, so the result can
drive scripts.

Examples:
  gridpatch diff report.xlsx report-patched.xlsx
  gridpatch diff a.xlsx b.xlsx --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

// diffCellReport is one changed cell in the --json report.
type diffCellReport struct {
	Address string             `json:"address"`
	Before  workbook.CellValue `json:"before"`
	After   workbook.CellValue `json:"after"`
}

type diffReport struct {
	Notes []string         `json:"notes,omitempty"`
	Cells []diffCellReport `json:"cells,omitempty"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	before, err := workbook.Load(args[0])
	if err != nil {
		return err
	}
	after, err := workbook.Load(args[1])
	if err != nil {
		return err
	}

	d := workbook.CompareDocuments(before, after)

	if jsonOutput {
		rep := diffReport{Notes: d.SheetNotes}
		for _, c := range d.Cells {
			rep.Cells = append(rep.Cells, diffCellReport{
				Address: cellAddress(c.Sheet, c.Row, c.Col),
				Before:  c.Before,
				After:   c.After,
			})
		}
		if err := jsonPrint(rep); err != nil {
			return err
		}
		if d.Count() > 0 {
			return &ExitError{Code: 2}
		}
		return nil
	}

	if d.Count() == 0 {
		fmt.Println("Workbooks match.")
		return nil
	}
	for _, n := range d.SheetNotes {
		fmt.Println(n)
	}
	for _, c := range d.Cells {
		fmt.Printf("%s: %s -> %s\n", cellAddress(c.Sheet, c.Row, c.Col), diffDisplay(c.Before), diffDisplay(c.After))
	}
	return &ExitError{Code: 2}
}

func cellAddress(sheet string, row, col int) string {
	return internal.FormatAddress(sheet, row+1, col+1, row+1, col+1)
}

// diffDisplay quotes strings and marks empty cells so "31", (empty) and 31
// stay distinguishable in the listing.
func diffDisplay(v workbook.CellValue) string {
	switch v.Kind() {
	case workbook.KindEmpty:
		return "(empty)"
	case workbook.KindString:
		return strconv.Quote(v.String())
	}
	return v.String()
}
