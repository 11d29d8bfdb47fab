package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/sheetserve/internal/models"
	"github.com/hyperjump/sheetserve/internal/workbook"
	"go.uber.org/zap"
)

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.locator.ListFiles()
	if err != nil {
		s.logger.Error("list files failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.FileList{Files: files})
}

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	sheets, err := s.locator.ListSheets(filename)
	if err != nil {
		s.respondWorkbookError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.SheetList{File: filename, Sheets: sheets})
}

// handleSinglePage serves the single-sheet API form: no sheet name in
// the path, valid only for workbooks with exactly one sheet.
func (s *Server) handleSinglePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "filename"), "")
}

// handleSheetPage serves the sheet-addressed API form. The sheet name
// is percent-decoded from the path segment.
func (s *Server) handleSheetPage(w http.ResponseWriter, r *http.Request) {
	sheet, err := url.PathUnescape(chi.URLParam(r, "sheet"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid sheet name")
		return
	}
	s.servePage(w, r, chi.URLParam(r, "filename"), sheet)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, filename, sheetName string) {
	pageNum, err := pageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid page value")
		return
	}

	f, err := s.locator.Open(filename)
	if err != nil {
		s.respondWorkbookError(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	sheet, err := workbook.ResolveSheet(f, sheetName)
	if err != nil {
		s.respondWorkbookError(w, r, err)
		return
	}

	page, err := workbook.ReadPage(r.Context(), f, filename, sheet, pageNum, s.config.Data.PageSize)
	if err != nil {
		s.respondWorkbookError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pageParam parses the page query parameter; absent means page 1.
func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, workbook.ErrInvalidPage
	}
	return page, nil
}

// respondWorkbookError maps workbook error kinds to HTTP statuses.
// Read failures are logged; client errors are not.
func (s *Server) respondWorkbookError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workbook.ErrFileNotFound), errors.Is(err, workbook.ErrSheetNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workbook.ErrSheetRequired), errors.Is(err, workbook.ErrInvalidPage):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("page request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.respondError(w, http.StatusInternalServerError, "could not load data: "+err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
