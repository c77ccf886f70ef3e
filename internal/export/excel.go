package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/township-classifier/app/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Townships"

// WriteExcel writes records as an xlsx workbook using a stream writer, same
// column layout as the CSV export.
func WriteExcel(w io.Writer, records []models.CoordinateRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"ID", "TWD97_X", "TWD97_Y", "Latitude", "Longitude", "Township", "Maps Link",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			rec.ID, rec.OriginalX, rec.OriginalY, rec.Lat, rec.Lng,
			rec.DisplayTownship(), rec.MapsLink(),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

// ReadExcelText flattens an uploaded workbook's first sheet into the
// line-oriented text the coordinate parser consumes, one row per line with
// tab-joined cells.
func ReadExcelText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
