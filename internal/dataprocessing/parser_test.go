package dataprocessing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/shared/testutil"
)

func TestReadTable(t *testing.T) {
	payload := testutil.NewBillingWorkbook(t,
		testutil.BillingRow{UnitType: "Commercial", UnitReference: "U1", FundType: "F1", Name: "Alice", GrossDemanded: "100.25", Settled: "40"},
	)

	table, err := ReadTable(bytes.NewReader(payload), "New Data")
	require.NoError(t, err)

	assert.Equal(t, "New Data", table.Sheet)
	assert.Equal(t, testutil.BillingHeader, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "100.25", table.Rows[0][5])
	assert.Equal(t, 2, table.RowNumber(0))
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name     string
		payload  func(t *testing.T) []byte
		wantType apierrors.ErrorType
	}{
		{
			name: "missing sheet",
			payload: func(t *testing.T) []byte {
				return testutil.NewWorkbook(t, testutil.WorkbookSheet{Name: "Old Data", Rows: [][]string{testutil.BillingHeader}})
			},
			wantType: apierrors.ErrTypeSchema,
		},
		{
			name: "empty sheet",
			payload: func(t *testing.T) []byte {
				return testutil.NewWorkbook(t, testutil.WorkbookSheet{Name: "New Data"})
			},
			wantType: apierrors.ErrTypeSchema,
		},
		{
			name: "not a workbook",
			payload: func(t *testing.T) []byte {
				return []byte("Unit type,Unit Reference\nCommercial,U1\n")
			},
			wantType: apierrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(bytes.NewReader(tt.payload(t)), "New Data")
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestReadTableFile(t *testing.T) {
	path := testutil.WriteWorkbook(t, "billing.xlsx", testutil.NewBillingWorkbook(t))

	table, err := ReadTableFile(path, "New Data")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	_, err = ReadTableFile(path+".missing", "New Data")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))
}
