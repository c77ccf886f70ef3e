package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/township-classifier/app/models"
)

func sampleRecords() []models.CoordinateRecord {
	return []models.CoordinateRecord{
		{
			ID:        1,
			OriginalX: 201234.5,
			OriginalY: 2655678.9,
			Lat:       23.998877,
			Lng:       120.512345,
			Township:  "埔心鄉",
			Status:    models.StatusCompleted,
		},
		{
			ID:        2,
			OriginalX: 210000,
			OriginalY: 2660000,
			Lat:       24.038,
			Lng:       120.598,
			Township:  models.TownshipFailed,
			Status:    models.StatusError,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "TWD97_X", "TWD97_Y", "Latitude", "Longitude", "Township", "Maps Link"}, rows[0])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "201234.5", rows[1][1])
	assert.Equal(t, "2655678.9", rows[1][2])
	assert.Equal(t, "23.998877", rows[1][3])
	assert.Equal(t, "120.512345", rows[1][4])
	assert.Equal(t, "埔心鄉", rows[1][5])
	assert.True(t, strings.HasPrefix(rows[1][6], "https://www.google.com/maps?q="))

	// The failure sentinel renders as an explicit placeholder, never blank.
	assert.Equal(t, "Unknown", rows[2][5])
}

func TestWriteExcelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleRecords()))

	// Feed the workbook back through the upload path.
	text, err := ReadExcelText(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TWD97_X")
	assert.Contains(t, lines[1], "埔心鄉")
	assert.Contains(t, lines[2], "Unknown")
}

func TestReadExcelText_NotAWorkbook(t *testing.T) {
	_, err := ReadExcelText(strings.NewReader("plain text, not xlsx"))
	assert.Error(t, err)
}
