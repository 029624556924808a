package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shoppulse/internal/dataprocessing"
	apierrors "shoppulse/internal/errors"
	"shoppulse/internal/exporter"
	"shoppulse/internal/middleware"
	"shoppulse/internal/validation"
)

// DataHandler handles batch uploads and data management requests.
type DataHandler struct {
	service        DataServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *validation.FileValidator
	maxUploadBytes int64
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DataHandler {
	return &DataHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "data_handler")),
		errorHandler:   errorHandler,
		validator:      validation.NewFileValidator(logger),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.UploadBatch)
	r.Get("/export", h.ExportCSV)
	r.Delete("/clear", h.ClearAllData)

	return r
}

// UploadBatch handles POST /api/data/upload. The uploaded file is parsed
// into raw rows (the column parsing is transport's job, not the core's)
// and submitted as one batch.
func (h *DataHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file upload is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "processing upload",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	rows, err := dataprocessing.ReadRows(header.Filename, file)
	if err != nil {
		// Unreadable input fails the batch before any row accounting,
		// but still leaves an auditable log entry.
		if _, failErr := h.service.FailBatch(r.Context(), header.Filename, err); failErr != nil {
			h.logger.ErrorContext(r.Context(), "failed to record failed batch",
				slog.String("error", failErr.Error()),
				slog.String("request_id", reqID),
			)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	outcome, err := h.service.SubmitBatch(r.Context(), header.Filename, rows)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.BatchFailedError(err.Error()))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "File processed successfully",
		"data":    outcome,
	})
}

// ExportCSV handles GET /api/data/export, streaming every stored record
// as a CSV attachment.
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ExportRecords(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := exporter.WriteRecords(w, records, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		// Headers are already written, so log instead of rendering a problem.
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// ClearAllData handles DELETE /api/data/clear
func (h *DataHandler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "clearing all data",
		slog.String("request_id", reqID),
	)

	if err := h.service.ClearAllData(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "All data cleared successfully",
	})
}

// LogsHandler handles processing log queries.
type LogsHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LogsHandler {
	return &LogsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "logs_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the log routes
func (h *LogsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetLogs)
	return r
}

// GetLogs handles GET /api/logs, most recent first
func (h *LogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ProcessingLogs(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   logs,
		"count":  len(logs),
	})
}
