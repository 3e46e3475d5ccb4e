package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundrecon/internal/config"
	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/exporter"
	"fundrecon/internal/services"
	"fundrecon/internal/shared/testutil"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, input io.Reader, req services.ReportRequest) (*services.ReportResult, error) {
	data, _ := io.ReadAll(input)
	args := m.Called(req, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReportResult), args.Error(1)
}

type multipartPart struct {
	field    string
	filename string
	content  []byte
	isFile   bool
}

func filePart(name string, content []byte) multipartPart {
	return multipartPart{field: "file", filename: name, content: content, isFile: true}
}

func fieldPart(field, value string) multipartPart {
	return multipartPart{field: field, content: []byte(value)}
}

// newUploadRequest builds a multipart POST to target
func newUploadRequest(t *testing.T, target string, parts ...multipartPart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		if p.isFile {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
			h.Set("Content-Type", "application/octet-stream")
		} else {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"`)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func setupUploadRouter(t *testing.T, service ReportServiceInterface) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewUploadHandler(service, config.UploadConfig{MaxBytes: 1 << 20, FormField: "file"}, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/upload", h.Routes())
	return r
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

func TestUploadHandler_Success(t *testing.T) {
	service := new(MockReportService)
	payload := []byte("workbook bytes")
	service.On("Generate", services.ReportRequest{
		FileName: "billing.xlsx",
		Source:   services.SourceHTTP,
	}, payload).Return(&services.ReportResult{
		FileName: "billing_analysis_report.xlsx",
		Content:  []byte("report"),
	}, nil)

	router := setupUploadRouter(t, service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newUploadRequest(t, "/upload", filePart("billing.xlsx", payload)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=billing_analysis_report.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "6", w.Header().Get("Content-Length"))
	assert.Equal(t, "report", w.Body.String())
	service.AssertExpectations(t)
}

func TestUploadHandler_Variant(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		parts   []multipartPart
		variant string
	}{
		{
			name:    "query parameter",
			target:  "/upload?variant=Extended",
			variant: config.VariantExtended,
		},
		{
			name:    "form field",
			target:  "/upload",
			parts:   []multipartPart{fieldPart("variant", "minimal")},
			variant: config.VariantMinimal,
		},
		{
			name:    "query wins over form field",
			target:  "/upload?variant=extended",
			parts:   []multipartPart{fieldPart("variant", "minimal")},
			variant: config.VariantExtended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockReportService)
			service.On("Generate", mock.MatchedBy(func(req services.ReportRequest) bool {
				return req.Variant == tt.variant
			}), mock.Anything).Return(&services.ReportResult{FileName: "a_analysis_report.xlsx"}, nil)

			parts := append([]multipartPart{filePart("a.xlsx", []byte("x"))}, tt.parts...)
			w := httptest.NewRecorder()
			setupUploadRouter(t, service).ServeHTTP(w, newUploadRequest(t, tt.target, parts...))

			assert.Equal(t, http.StatusOK, w.Code)
			service.AssertExpectations(t)
		})
	}
}

func TestUploadHandler_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		request    func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name: "missing file field",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/upload", fieldPart("other", "x"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILE_UPLOADED",
			wantDetail: "No file uploaded",
		},
		{
			name: "empty filename",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/upload", filePart("", nil))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILE_SELECTED",
			wantDetail: "No selected file",
		},
		{
			name: "unknown variant",
			request: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/upload?variant=all", filePart("a.xlsx", []byte("x")))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "json body",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILE_UPLOADED",
			wantDetail: "No file uploaded",
		},
		{
			name: "urlencoded form",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("file=billing.xlsx"))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILE_UPLOADED",
		},
		{
			name: "no content type",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILE_UPLOADED",
		},
		{
			name: "multipart without boundary",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("x"))
				req.Header.Set("Content-Type", "multipart/form-data")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockReportService)

			w := httptest.NewRecorder()
			setupUploadRouter(t, service).ServeHTTP(w, tt.request(t))

			assert.Equal(t, tt.wantStatus, w.Code)
			got := decodeProblem(t, w)
			assert.Equal(t, tt.wantCode, got["error_code"])
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, got["detail"])
			}
			service.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestUploadHandler_ServiceFailure(t *testing.T) {
	service := new(MockReportService)
	service.On("Generate", mock.Anything, mock.Anything).Return(nil, apierrors.MissingSheetError("New Data"))

	w := httptest.NewRecorder()
	setupUploadRouter(t, service).ServeHTTP(w, newUploadRequest(t, "/upload", filePart("a.xlsx", []byte("x"))))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	got := decodeProblem(t, w)
	assert.Equal(t, apierrors.ProcessingFailedMessage, got["detail"])
	assert.Equal(t, apierrors.TypeInputSchema, got["type"])
	assert.NotContains(t, w.Body.String(), "New Data")
}

func TestUploadHandler_EndToEnd(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	service := services.NewReconciliationService(config.Default().Report, services.Dependencies{Logger: logger})

	payload := testutil.NewBillingWorkbook(t,
		testutil.BillingRow{UnitType: "Commercial", UnitReference: "U1", FundType: "F1", Name: "Alice", GrossDemanded: "100", Settled: "40"},
		testutil.BillingRow{UnitType: "Office", UnitReference: "U2", FundType: "F2", Name: "Bob", GrossDemanded: "75", Settled: "0"},
	)

	w := httptest.NewRecorder()
	setupUploadRouter(t, service).ServeHTTP(w, newUploadRequest(t, "/upload", filePart("Q3 billing.xlsx", payload)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Q3 billing_analysis_report.xlsx"`, w.Header().Get("Content-Disposition"))

	f := testutil.OpenWorkbook(t, w.Body.Bytes())
	assert.Equal(t, []string{exporter.SummarySheet, exporter.DetailSheet}, f.GetSheetList())

	title, err := f.GetCellValue(exporter.DetailSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Fund Type: F1", title)
}
