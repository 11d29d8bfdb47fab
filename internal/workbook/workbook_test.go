package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeXLSX writes a workbook fixture with a header and data rows on the
// default sheet. A nil data row is written as a single empty cell so the
// row exists but is blank.
func writeXLSX(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	fillSheet(t, f, sheet, header, rows)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func fillSheet(t *testing.T, f *excelize.File, sheet string, header []string, rows [][]string) {
	t.Helper()
	for i, h := range header {
		axis, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, axis, h); err != nil {
			t.Fatal(err)
		}
	}
	for r, row := range rows {
		if row == nil {
			axis, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetCellValue(sheet, axis, ""); err != nil {
				t.Fatal(err)
			}
			continue
		}
		for c, v := range row {
			axis, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func openFixture(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func mustWrite(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixturePath(t *testing.T, dir, name string) string {
	t.Helper()
	return filepath.Join(dir, name)
}
