package workbook

import (
	"fmt"
	"io"
	"os"
)

// SaveResult reports what a save did.
type SaveResult struct {
	Sheets         int
	CellsWritten   int
	EditsApplied   int
	EditsUnmatched int    // edits addressing cells outside every sheet's used range
	BackupPath     string // non-empty when a backup file remains after success
}

// Saver applies a changeset to a workbook file and commits the result
// durably: back up the destination, write a temp file alongside it, rename
// the temp file over the destination, then delete the backup. Any step
// failing leaves the destination as it was. Construct with NewSaver.
//
// Concurrent saves to the same path are not coordinated; external locking
// is the caller's responsibility.
type Saver struct {
	// KeepBackup retains the .bak file after a successful save.
	KeepBackup bool
	// DryRun reads and merges but writes nothing to disk.
	DryRun bool
	// Warnings receives non-fatal diagnostics, such as a backup that could
	// not be removed after a successful commit.
	Warnings io.Writer

	copyFile  func(src, dst string) error
	writeFile func(path string, data []byte) error
	rename    func(oldpath, newpath string) error
	remove    func(path string) error
}

// NewSaver returns a Saver with default behavior: no retained backup,
// warnings to stderr, real filesystem operations.
func NewSaver() *Saver {
	return &Saver{
		Warnings:  os.Stderr,
		copyFile:  copyFileContents,
		writeFile: writeFileSync,
		rename:    os.Rename,
		remove:    os.Remove,
	}
}

// SaveWithChanges applies cs to the workbook at path and writes the result
// back over it with default options. A nil or empty changeset rewrites the
// document unchanged.
func SaveWithChanges(path string, cs *Changeset) error {
	_, err := NewSaver().SaveWithChanges(path, cs)
	return err
}

// SaveWithChanges applies cs to the workbook at path in place.
func (s *Saver) SaveWithChanges(path string, cs *Changeset) (*SaveResult, error) {
	return s.SaveWithChangesTo(path, path, cs)
}

// SaveWithChangesTo reads the workbook at src, applies cs, and commits the
// result to dst. The backup step only applies when dst already exists.
func (s *Saver) SaveWithChangesTo(src, dst string, cs *Changeset) (*SaveResult, error) {
	if cs == nil {
		cs = NewChangeset()
	}

	doc, err := Load(src)
	if err != nil {
		return nil, err
	}

	book := newOutputBook()
	defer book.close()

	res := &SaveResult{Sheets: len(doc.Sheets)}
	for i := range doc.Sheets {
		sheet := &doc.Sheets[i]
		if err := mergeSheet(book, sheet, i, cs, res); err != nil {
			return nil, fmt.Errorf("building sheet %q: %w", sheet.Name, err)
		}
	}
	res.EditsUnmatched = cs.Len() - res.EditsApplied

	if s.DryRun {
		return res, nil
	}

	data, err := book.bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	if err := s.commit(dst, data.Bytes(), res); err != nil {
		return nil, err
	}
	return res, nil
}

// mergeSheet writes one sheet of the output: for every position in the
// source sheet's used range, a pending edit wins over the source value,
// and source positions holding no cell are skipped so the output stays as
// sparse as the input. Edits outside the used range match nothing.
func mergeSheet(book *outputBook, sheet *Sheet, index int, cs *Changeset, res *SaveResult) error {
	if err := book.addSheet(sheet.Name, index); err != nil {
		return err
	}
	edits := cs.sheetEdits(sheet.Name)
	for r := 0; r < sheet.Rows(); r++ {
		for c := 0; c < sheet.Cols(); c++ {
			v, edited := sheet.Cells[r][c], false
			if e, ok := edits[gridKey{r, c}]; ok {
				v, edited = e.Value, true
			} else if v.IsEmpty() {
				continue
			}
			if err := book.writeCell(sheet.Name, r, c, v); err != nil {
				return err
			}
			res.CellsWritten++
			if edited {
				res.EditsApplied++
			}
		}
	}
	return nil
}

// commit is the durable write protocol. On rename failure the temp file is
// left in place for recovery alongside the backup.
func (s *Saver) commit(dst string, data []byte, res *SaveResult) error {
	backup := dst + ".bak"
	temp := dst + ".tmp"

	haveBackup := false
	if _, err := os.Stat(dst); err == nil {
		if err := s.copyFile(dst, backup); err != nil {
			return fmt.Errorf("backing up %s to %s: %w", dst, backup, err)
		}
		haveBackup = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking destination %s: %w", dst, err)
	}

	if err := s.writeFile(temp, data); err != nil {
		_ = s.remove(temp)
		return fmt.Errorf("writing temp file %s: %w", temp, err)
	}

	if err := s.rename(temp, dst); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}

	if haveBackup {
		if s.KeepBackup {
			res.BackupPath = backup
		} else if err := s.remove(backup); err != nil {
			fmt.Fprintf(s.Warnings, "Warning: could not remove backup %s: %v\n", backup, err)
			res.BackupPath = backup
		}
	}
	return nil
}

// copyFileContents copies src to dst, creating dst with src's permissions.
func copyFileContents(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeFileSync writes data and flushes it to stable storage before
// returning.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
