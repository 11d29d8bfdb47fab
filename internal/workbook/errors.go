package workbook

import "errors"

// Error kinds surfaced by the locator and paginator. Handlers map these
// to HTTP statuses with errors.Is; everything else that escapes this
// package wraps one of them.
var (
	// ErrFileNotFound means the filename does not resolve to a file
	// inside the data directory.
	ErrFileNotFound = errors.New("file not found")

	// ErrSheetNotFound means the workbook has no sheet with the
	// requested name.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrSheetRequired means a multi-sheet workbook was addressed
	// through the single-sheet form.
	ErrSheetRequired = errors.New("sheet name required for multi-sheet workbook")

	// ErrInvalidPage means the page number is not a positive integer.
	ErrInvalidPage = errors.New("invalid page value")

	// ErrUnreadable means the file exists but cannot be opened as a
	// spreadsheet.
	ErrUnreadable = errors.New("file is not a readable workbook")

	// ErrReadFailure means an I/O or parse failure occurred while
	// streaming rows; the page request fails as a whole.
	ErrReadFailure = errors.New("failed reading rows")
)
