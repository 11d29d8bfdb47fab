// Package workbook locates spreadsheet files in a sandboxed data
// directory and streams paginated row windows out of their sheets.
//
// Every request re-derives its view from the file on disk: no handle,
// parse result, or row count is cached across requests. Files may
// therefore change between two pages of the same logical pagination
// session; the API documents that as an accepted inconsistency.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Ext is the only file extension the locator recognizes.
const Ext = ".xlsx"

// lockPrefix marks Excel owner/lock artifacts left next to open files.
const lockPrefix = "~$"

// Locator resolves filenames against a fixed data directory and opens
// per-request read handles. It holds no state beyond the directory path
// and is safe for concurrent use.
type Locator struct {
	dir string
}

// NewLocator returns a locator rooted at dir.
func NewLocator(dir string) *Locator {
	return &Locator{dir: dir}
}

// Dir returns the data directory the locator is rooted at.
func (l *Locator) Dir() string {
	return l.dir
}

// ListFiles lists the recognized workbook files in the data directory
// in lexicographic order. Lock artifacts and files with other
// extensions are excluded.
func (l *Locator) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list data directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, lockPrefix) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), Ext) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// Resolve maps filename to an absolute path inside the data directory.
// Names carrying path separators or traversal elements fail with
// ErrFileNotFound, as does a name whose file does not exist. Names
// ListFiles would hide (lock artifacts, other extensions) are not
// addressable either.
func (l *Locator) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, filename)
	}
	if strings.HasPrefix(filename, lockPrefix) || !strings.EqualFold(filepath.Ext(filename), Ext) {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, filename)
	}
	path := filepath.Join(l.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, filename)
	}
	return path, nil
}

// Open resolves filename and opens a read handle on the workbook. The
// caller owns the handle and must close it on every exit path.
func (l *Locator) Open(filename string) (*excelize.File, error) {
	path, err := l.Resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return f, nil
}

// ListSheets returns the sheet names of filename in workbook order.
func (l *Locator) ListSheets(filename string) ([]string, error) {
	f, err := l.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// ResolveSheet picks the sheet to page through. An empty sheetName is
// the single-sheet form: it is only valid when the workbook has exactly
// one sheet. A named sheet must exist in the workbook.
//
// Defaulting silently to the first sheet of a multi-sheet workbook
// risks serving the wrong dataset unnoticed, so the single-sheet form
// rejects those with ErrSheetRequired instead.
func ResolveSheet(f *excelize.File, sheetName string) (string, error) {
	sheets := f.GetSheetList()
	if sheetName == "" {
		switch len(sheets) {
		case 0:
			return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		case 1:
			return sheets[0], nil
		default:
			return "", fmt.Errorf("%w (workbook has %d sheets)", ErrSheetRequired, len(sheets))
		}
	}
	for _, s := range sheets {
		if s == sheetName {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
}
