package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFile_CSV(t *testing.T) {
	data := []byte("Username, MCC ,mnc,Price,CURRENCY\nclient1,202,01,12.5,EUR\nclient2,204,08,0.045,\n")

	rows, err := ParseFile(data, "pricelist.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Header names are trimmed and lower-cased.
	assert.Equal(t, "client1", rows[0]["username"])
	assert.Equal(t, "202", rows[0]["mcc"])
	assert.Equal(t, "01", rows[0]["mnc"])
	assert.Equal(t, "12.5", rows[0]["price"])
	assert.Equal(t, "EUR", rows[0]["currency"])

	assert.Equal(t, "", rows[1]["currency"])
}

func TestParseFile_CSVRaggedRows(t *testing.T) {
	data := []byte("username,mcc,mnc,price\nclient1,202\n")

	rows, err := ParseFile(data, "short.CSV")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "client1", rows[0]["username"])
	assert.Equal(t, "", rows[0]["price"], "missing trailing cells read as empty")
}

func TestParseFile_CSVEmpty(t *testing.T) {
	rows, err := ParseFile(nil, "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Username", "MCCMNC", "Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"client1", "20201", "12,50"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ParseFile(buf.Bytes(), "offer.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "client1", rows[0]["username"])
	assert.Equal(t, "20201", rows[0]["mccmnc"])
	assert.Equal(t, "12,50", rows[0]["price"])
}

// .xls files are BIFF, not a zip archive, and must not hit the xlsx decoder.
func TestParseFile_XLSDispatchesToLegacyDecoder(t *testing.T) {
	_, err := ParseFile([]byte("not an ole2 compound document"), "legacy.xls")
	require.Error(t, err)
	assert.ErrorContains(t, err, "open xls workbook")
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	_, err := ParseFile([]byte("whatever"), "pricelist.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseFile([]byte("whatever"), "noextension")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
