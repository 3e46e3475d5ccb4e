package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteSummary(t *testing.T) {
	rep := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(false).WriteSummary(&buf, rep.Summary))

	want := "Fund type,Total_Outstanding,Number_of_Units_With_Outstanding\n" +
		"F1,120.50,2\n" +
		"F2,999.00,1\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVWriter_BOM(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVWriter(true).WriteCSV(&buf, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "x,y"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, buf.Bytes()[:3])
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String()[3:])
}
