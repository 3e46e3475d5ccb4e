package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/shared/testutil"
)

type uploadMeta struct {
	Filename string `json:"filename" validate:"required,filename"`
}

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	v := newValidation(t)

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{name: "plain name", filename: "billing.xlsx"},
		{name: "dots inside name", filename: "q1..q2.xlsx"},
		{name: "empty", filename: "", wantErr: true},
		{name: "unix path", filename: "../etc/passwd", wantErr: true},
		{name: "windows path", filename: `C:\data\billing.xlsx`, wantErr: true},
		{name: "dot dot", filename: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(uploadMeta{Filename: tt.filename})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			require.Len(t, details, 1)
			assert.Equal(t, "filename", details[0].Field)
		})
	}
}

func TestValidationMiddleware_ValidateEnum(t *testing.T) {
	v := newValidation(t)
	allowed := []string{"minimal", "extended"}

	w := httptest.NewRecorder()
	got, ok := v.ValidateEnum(w, httptest.NewRequest(http.MethodPost, "/upload", nil), "variant", allowed, "minimal")
	assert.True(t, ok)
	assert.Equal(t, "minimal", got)

	got, ok = v.ValidateEnum(w, httptest.NewRequest(http.MethodPost, "/upload?variant=Extended", nil), "variant", allowed, "minimal")
	assert.True(t, ok)
	assert.Equal(t, "extended", got)

	w = httptest.NewRecorder()
	_, ok = v.ValidateEnum(w, httptest.NewRequest(http.MethodPost, "/upload?variant=all", nil), "variant", allowed, "minimal")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "variant must be one of: minimal, extended")
}
