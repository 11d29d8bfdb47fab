// Package models holds the request and response types shared by the
// workbook core and the HTTP server.
package models

// Record maps header field names to the cell text of one data row.
// A row shorter than the header carries "" for the missing trailing
// fields; duplicate header names overwrite positionally-earlier ones,
// so the last column with a given name wins.
type Record map[string]string

// Page is one window of data rows from a sheet, plus the pagination
// metadata a client needs to walk the whole sheet.
//
// Data can legitimately hold fewer than PerPage records even when
// HasMore is true: the window covers a fixed span of physical rows and
// blank rows inside it are dropped from the output.
type Page struct {
	File       string   `json:"file"`
	Sheet      string   `json:"sheet,omitempty"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalRows  int      `json:"total_rows"`
	TotalPages int      `json:"total_pages"`
	HasMore    bool     `json:"has_more"`
	// NextPage is page+1 when HasMore, and omitted entirely otherwise.
	NextPage *int     `json:"next_page,omitempty"`
	Data     []Record `json:"data"`
}

// FileList is the response for the file listing endpoint.
type FileList struct {
	Files []string `json:"files"`
}

// SheetList is the response for the sheet enumeration endpoint.
type SheetList struct {
	File   string   `json:"file"`
	Sheets []string `json:"sheets"`
}
