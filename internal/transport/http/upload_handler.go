package http

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fundrecon/internal/config"
	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/middleware"
	"fundrecon/internal/services"
)

// XLSXContentType is the media type of generated reports
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// VariantParam selects the unit-type variant for one upload
const VariantParam = "variant"

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// uploadMeta is the validated metadata of an uploaded file
type uploadMeta struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// UploadHandler turns an uploaded billing workbook into a report download
type UploadHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
	cfg          config.UploadConfig
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	service ReportServiceInterface,
	cfg config.UploadConfig,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *UploadHandler {
	if cfg.FormField == "" {
		cfg.FormField = config.DefaultUploadField
	}
	return &UploadHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "upload")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		cfg:          cfg,
	}
}

// Routes returns the upload routes
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	return r
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		// Any other body carries no file part
		if errors.Is(err, http.ErrNotMultipart) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart form", err.Error(),
		))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(h.cfg.FormField)
	if err != nil {
		// A part with an empty filename is parsed as a plain form value
		if _, ok := r.MultipartForm.Value[h.cfg.FormField]; ok {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoFileSelected)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoFileSelected)
		return
	}
	if err := h.validation.ValidateStruct(uploadMeta{Filename: header.Filename}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// The upload form posts the variant as a field; the query string wins
	if r.URL.Query().Get(VariantParam) == "" {
		if values := r.MultipartForm.Value[VariantParam]; len(values) > 0 && values[0] != "" {
			q := r.URL.Query()
			q.Set(VariantParam, values[0])
			r.URL.RawQuery = q.Encode()
		}
	}
	variant, ok := h.validation.ValidateEnum(w, r, VariantParam, services.Variants(), "")
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "report upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("variant", variant),
	)

	result, err := h.service.Generate(ctx, file, services.ReportRequest{
		FileName: header.Filename,
		Source:   services.SourceHTTP,
		Variant:  variant,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": result.FileName,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := bytes.NewReader(result.Content).WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "failed to stream report", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "report download sent",
		slog.String("filename", result.FileName),
		slog.Int("bytes", len(result.Content)),
		slog.Int("units", result.Stats.OutstandingUnits),
	)
}
