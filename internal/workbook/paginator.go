package workbook

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/sheetserve/internal/models"
	"github.com/xuri/excelize/v2"
)

// ReadPage streams one page of data rows out of sheet. Row 1 is the
// header; data rows are everything after it. The page covers the
// physical data-row window [(page-1)*pageSize, page*pageSize), reached
// by skipping rows without decoding them, so serving any one page never
// materializes the sheet.
//
// Blank rows inside the window consume their slot but are dropped from
// the returned records, so a page can carry fewer than pageSize records
// while more data remains. TotalRows counts every data row in the sheet
// and requires the stream to run to the end; HasMore is true exactly
// when physical rows exist beyond the window.
//
// ctx is checked on every row, so a cancelled request stops scanning
// promptly instead of finishing an unwanted full scan.
func ReadPage(ctx context.Context, f *excelize.File, filename, sheet string, page, pageSize int) (*models.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size %d", ErrInvalidPage, pageSize)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer func() { _ = rows.Close() }()

	var header []string
	if rows.Next() {
		header, err = rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrReadFailure, err)
		}
	}

	start, end := pageWindow(page, pageSize)

	data := make([]models.Record, 0, pageSize)
	dataRows := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("page read aborted: %w", err)
		}
		idx := dataRows
		dataRows++
		if idx < start || idx >= end {
			// Outside the window: count the row, skip decoding it.
			continue
		}
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrReadFailure, idx+2, err)
		}
		if blankRow(cells) {
			continue
		}
		data = append(data, zipRecord(header, cells))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}

	hasMore := end < dataRows
	p := &models.Page{
		File:       filename,
		Sheet:      sheet,
		Page:       page,
		PerPage:    pageSize,
		TotalRows:  dataRows,
		TotalPages: (dataRows + pageSize - 1) / pageSize,
		HasMore:    hasMore,
		Data:       data,
	}
	if hasMore {
		next := page + 1
		p.NextPage = &next
	}
	return p, nil
}

// pageWindow returns the half-open physical-row window for page. When
// page*pageSize would overflow int, the window is clamped past any
// addressable row instead of wrapping negative, so a huge page number
// behaves like any other past-the-end page: empty data, no next page.
func pageWindow(page, pageSize int) (start, end int) {
	if page > math.MaxInt/pageSize {
		return math.MaxInt, math.MaxInt
	}
	return (page - 1) * pageSize, page * pageSize
}

// blankRow reports whether every cell of the row is empty. The
// streaming reader already drops trailing empty cells, so a fully blank
// row usually arrives as a zero-length slice.
func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// zipRecord pairs header names with row cells positionally. A row
// shorter than the header maps the missing trailing fields to "", and
// cells beyond the header are dropped. Duplicate header names collapse
// to the last column with that name.
func zipRecord(header, cells []string) models.Record {
	rec := make(models.Record, len(header))
	for i, name := range header {
		if i < len(cells) {
			rec[name] = cells[i]
		} else {
			rec[name] = ""
		}
	}
	return rec
}
