package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridpatch/gridpatch/internal"
	"github.com/gridpatch/gridpatch/workbook"
)

var getCmd = &cobra.Command{
	Use:   "get <file> <range>",
	Short: "Read cell values from a workbook",
	Long: `Read a rectangular range of cell values.

The range must name its sheet, like "Sheet1!A1:C3", or "Sheet1!B2" for a
single cell. Values print as stored: formula cells show their cached
result and datetimes show as yyyy-mm-dd hh:mm:ss. Cells outside the used
range print as empty.

Examples:
  gridpatch get report.xlsx "Sheet1!A1:C3"
  gridpatch get report.xlsx "Sheet1!B2"
  gridpatch get report.xlsx "Sheet1!A1:C3" --json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

// getReport is the --json shape of a range read.
type getReport struct {
	Address string                 `json:"address"`
	Rows    [][]workbook.CellValue `json:"rows"`
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath, address := args[0], args[1]

	sheetName, startRow, startCol, endRow, endCol, err := internal.ParseRange(address)
	if err != nil {
		return err
	}

	doc, err := workbook.Load(filePath)
	if err != nil {
		return err
	}
	sheet, ok := doc.Sheet(sheetName)
	if !ok {
		return fmt.Errorf("no sheet %q in %s (sheets: %s)", sheetName, filePath, strings.Join(docSheetNames(doc), ", "))
	}

	rows := make([][]workbook.CellValue, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		row := make([]workbook.CellValue, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			row = append(row, sheet.At(r-1, c-1))
		}
		rows = append(rows, row)
	}

	if jsonOutput {
		return jsonPrint(getReport{
			Address: internal.FormatAddress(sheetName, startRow, startCol, endRow, endCol),
			Rows:    rows,
		})
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Fprintf(os.Stderr, "%s  [%d rows x %d cols]\n",
		internal.FormatAddress(sheetName, startRow, startCol, endRow, endCol),
		endRow-startRow+1, endCol-startCol+1)
	return nil
}

func docSheetNames(doc *workbook.Document) []string {
	names := make([]string, len(doc.Sheets))
	for i := range doc.Sheets {
		names[i] = doc.Sheets[i].Name
	}
	return names
}
