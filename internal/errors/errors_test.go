package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "NO_FILE_UPLOADED", "No file uploaded")
	assert.Equal(t, "No file uploaded", err.Error())
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"no file uploaded", ErrNoFileUploaded, http.StatusBadRequest, "NO_FILE_UPLOADED", "No file uploaded"},
		{"no file selected", ErrNoFileSelected, http.StatusBadRequest, "NO_FILE_SELECTED", "No selected file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, tt.err.Message)
			}
		})
	}
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("variant", "must be minimal or extended")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "variant", details.Field)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusInternalServerError, TypeInputSchema, "Internal Server Error", ProcessingFailedMessage, "/upload").
		WithExtension("error_code", "SCHEMA_ERROR")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeInputSchema, got["type"])
	assert.Equal(t, "Error processing file", got["detail"])
	assert.Equal(t, "/upload", got["instance"])
	assert.Equal(t, "SCHEMA_ERROR", got["error_code"])
	assert.EqualValues(t, 500, got["status"])

	bare, err := json.Marshal(NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""))
	require.NoError(t, err)
	assert.NotContains(t, string(bare), "detail")
	assert.NotContains(t, string(bare), "instance")
}
