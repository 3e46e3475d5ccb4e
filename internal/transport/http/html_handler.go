package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/upload.html
var templateFS embed.FS

var uploadTemplate = template.Must(template.ParseFS(templateFS, "templates/upload.html"))

// UploadPage describes the upload form
type UploadPage struct {
	Title          string
	Action         string
	FormField      string
	MaxMegabytes   int64
	Variants       []string
	DefaultVariant string
}

// ServeUploadForm serves the upload form at GET /
func ServeUploadForm(page UploadPage, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := uploadTemplate.Execute(&buf, page); err != nil {
			logger.ErrorContext(r.Context(), "failed to render upload form", slog.String("error", err.Error()))
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(buf.Bytes())
	}
}
