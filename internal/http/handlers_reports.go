package http

import (
	"fmt"
	"net/http"

	"finance/internal/blob"
	"finance/internal/core"
	"finance/internal/export"
	applog "finance/internal/log"
	"finance/internal/report"
)

const downloadPrefix = "/api/download/"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.ledger.CurrentPeriod())
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	rep, err := s.reports.Monthly(r.Context(), p.Year, p.Month)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleExportSpreadsheet writes the filtered transactions, newest first,
// to an xlsx file and returns its download link.
func (s *Server) handleExportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	start, end, err := ParseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	txs, err := s.ledger.ExportTransactions(r.Context(), start, end)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	data, err := export.Spreadsheet(txs)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}

	name := blob.NewName("transacoes", s.now().Format("20060102_150405"), "xlsx")
	s.storeExport(w, r, name, export.SpreadsheetMIME, data)
}

type reportRenderer func(report.Report) ([]byte, error)

// handleExportReport renders the month's report with render and returns the
// download link of the stored file.
func (s *Server) handleExportReport(render reportRenderer, ext, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParseMonthParams(r.URL.Query(), s.ledger.CurrentPeriod())
		if err != nil {
			writeError(w, r, applog.OpExport, err)
			return
		}
		rep, err := s.reports.Monthly(r.Context(), p.Year, p.Month)
		if err != nil {
			writeError(w, r, applog.OpExport, err)
			return
		}
		data, err := render(rep)
		if err != nil {
			writeError(w, r, applog.OpExport, err)
			return
		}

		name := blob.NewName("relatorio", fmt.Sprintf("%02d_%d", p.Month, p.Year), ext)
		s.storeExport(w, r, name, contentType, data)
	}
}

func (s *Server) storeExport(w http.ResponseWriter, r *http.Request, name, contentType string, data []byte) {
	if err := s.files.Put(r.Context(), name, contentType, data); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentExport).InfoContext(r.Context(), "Export stored",
		applog.FieldFileName, name,
		"size_bytes", len(data))
	writeJSON(w, http.StatusOK, downloadBody{DownloadURL: downloadPrefix + name})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if !blob.ValidName(name) {
		writeError(w, r, applog.OpRead, fmt.Errorf("%w: %s", core.ErrFileNotFound, name))
		return
	}
	obj, err := s.files.Get(r.Context(), name)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = blob.ContentTypeFor(name)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", fmt.Sprint(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
