package workbook

import "sort"

// Coordinate addresses one cell: sheet name plus 0-based row and column
// offsets counted from A1.
type Coordinate struct {
	Sheet string
	Row   int
	Col   int
}

// Edit is a pending change to one cell. Applying an Edit whose value is
// EmptyValue blanks the target cell.
type Edit struct {
	Value CellValue
}

// CellEdit is an edit paired with its position within a sheet.
type CellEdit struct {
	Row, Col int
	Edit     Edit
}

type gridKey struct{ row, col int }

// Changeset is a sparse collection of pending edits keyed by coordinate.
// Sheet name matching is exact and case-sensitive. A Changeset is not safe
// for concurrent mutation.
type Changeset struct {
	sheets map[string]map[gridKey]Edit
	n      int
}

// NewChangeset returns an empty changeset.
func NewChangeset() *Changeset {
	return &Changeset{sheets: make(map[string]map[gridKey]Edit)}
}

// Set records an edit. Setting an already-edited coordinate replaces the
// pending edit; the last write wins.
func (c *Changeset) Set(at Coordinate, e Edit) {
	grid, ok := c.sheets[at.Sheet]
	if !ok {
		grid = make(map[gridKey]Edit)
		c.sheets[at.Sheet] = grid
	}
	k := gridKey{at.Row, at.Col}
	if _, seen := grid[k]; !seen {
		c.n++
	}
	grid[k] = e
}

// Len reports the number of pending edits across all sheets.
func (c *Changeset) Len() int { return c.n }

// EditsForSheet returns the pending edits for one sheet in row-major order.
// The result is a copy; mutating it does not affect the changeset. Unknown
// sheet names yield an empty slice.
func (c *Changeset) EditsForSheet(sheet string) []CellEdit {
	grid := c.sheets[sheet]
	edits := make([]CellEdit, 0, len(grid))
	for k, e := range grid {
		edits = append(edits, CellEdit{Row: k.row, Col: k.col, Edit: e})
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Row != edits[j].Row {
			return edits[i].Row < edits[j].Row
		}
		return edits[i].Col < edits[j].Col
	})
	return edits
}

// sheetEdits is the merge loop's O(1) lookup view for one sheet.
func (c *Changeset) sheetEdits(sheet string) map[gridKey]Edit {
	return c.sheets[sheet]
}
