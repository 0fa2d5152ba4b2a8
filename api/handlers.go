package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"LowesMerge/api/constants"
	"LowesMerge/internal/audit"
	"LowesMerge/internal/config"
	"LowesMerge/internal/logger"
	"LowesMerge/internal/merge"
	"LowesMerge/internal/notification"
	"LowesMerge/internal/progress"
	"LowesMerge/internal/reconcile"
	"LowesMerge/internal/reportstore"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RunLister is the read side of the run audit.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]audit.Run, error)
}

// Handlers serves the merge endpoints. Runs may be nil when no database is configured.
type Handlers struct {
	Runner         *merge.Runner
	Reports        *reportstore.Store
	Progress       *progress.Broker
	Notices        *notification.NotificationService
	Runs           RunLister
	MaxUploadBytes int64
}

// MergeHandler handles POST /merge
func (h *Handlers) MergeHandler(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = int64(config.DefaultMaxUploadMB) << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		LogError("merge upload rejected: %v", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			RespondWithError(w, http.StatusRequestEntityTooLarge, constants.ErrUploadTooLarge)
			return
		}
		RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidForm)
		return
	}

	runID := r.FormValue(constants.FieldRunID)
	if runID != "" {
		if _, err := uuid.Parse(runID); err != nil {
			RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRunID)
			return
		}
	}

	req := merge.Request{RunID: runID, Source: merge.SourceUpload}
	for _, f := range []struct {
		field string
		dst   **merge.File
	}{
		{constants.FieldOrders, &req.Orders},
		{constants.FieldShipments, &req.Shipments},
		{constants.FieldInvoices, &req.Invoices},
	} {
		file, err := formFile(r, f.field)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		*f.dst = file
	}

	out, err := h.Runner.Run(r.Context(), req)
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	LogInfo("merge run %s served %s (%d bytes)", out.RunID, out.Filename, len(out.Workbook))
	writeWorkbook(w, out.RunID, out.Filename, out.Workbook)
}

func (h *Handlers) respondRunError(w http.ResponseWriter, err error) {
	var missing *reconcile.MissingColumnsError
	var input *merge.InputError
	switch {
	case errors.As(err, &missing):
		logger.Audit("merge upload rejected: " + err.Error())
		RespondWithErrorDetails(w, http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"missing": missing.Missing,
		})
	case errors.Is(err, merge.ErrNoOrders):
		RespondWithError(w, http.StatusBadRequest, constants.ErrOrdersRequired)
	case errors.As(err, &input):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		LogError("merge failed: %v", err)
		RespondWithError(w, http.StatusInternalServerError, constants.ErrMergeFailed)
	}
}

// formFile returns the uploaded file in field, or nil when the field is absent.
func formFile(r *http.Request, field string) (*merge.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s file: %w", field, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", field, err)
	}
	return &merge.File{Name: header.Filename, Data: data}, nil
}

func writeWorkbook(w http.ResponseWriter, runID, filename string, data []byte) {
	w.Header().Set(constants.ContentTypeText, config.SpreadsheetMIME)
	w.Header().Set(constants.HeaderContentDisp, fmt.Sprintf(constants.FormatAttachment, filename))
	w.Header().Set(constants.HeaderRunID, runID)
	w.Header().Set(constants.HeaderExposeHeaders, constants.HeaderContentDisp+", "+constants.HeaderRunID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ProgressHandler handles GET /merge/{runID}/progress
func (h *Handlers) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	h.Progress.ServeSSE(w, r, mux.Vars(r)["runID"])
}

// ReportHandler handles GET /reports/{runID}
func (h *Handlers) ReportHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	report, ok := h.Reports.Get(runID)
	if !ok {
		RespondWithError(w, http.StatusNotFound, constants.ErrReportNotFound)
		return
	}
	writeWorkbook(w, report.RunID, report.Filename, report.Data)
}

// RunsHandler handles GET /runs. It reads the audit table when one is
// configured and the in-memory notices otherwise.
func (h *Handlers) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if h.Runs != nil {
		runs, err := h.Runs.Recent(r.Context(), constants.DefaultRecentRunLimit)
		if err != nil {
			LogError("list runs: %v", err)
			RespondWithError(w, http.StatusInternalServerError, constants.ErrRunsUnavailable)
			return
		}
		RespondWithPayload(w, true, "", runs)
		return
	}
	notices := []notification.Notice{}
	if h.Notices != nil {
		notices = h.Notices.GetNotifications()
	}
	RespondWithPayload(w, true, "", notices)
}

// HealthHandler handles GET /health
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	RespondWithPayload(w, true, "", map[string]string{"status": "ok"})
}
