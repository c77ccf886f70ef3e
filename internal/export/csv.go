// Package export serializes finished record sets for download. Export is a
// terminal one-way dump; nothing here persists results.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/township-classifier/app/models"
)

// csvHeader is the fixed export column layout.
var csvHeader = []string{"ID", "TWD97_X", "TWD97_Y", "Latitude", "Longitude", "Township", "Maps Link"}

// WriteCSV writes records to w in the fixed column layout. Unresolved
// townships render as "Unknown", never blank.
func WriteCSV(w io.Writer, records []models.CoordinateRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.ID),
			strconv.FormatFloat(rec.OriginalX, 'f', -1, 64),
			strconv.FormatFloat(rec.OriginalY, 'f', -1, 64),
			strconv.FormatFloat(rec.Lat, 'f', 6, 64),
			strconv.FormatFloat(rec.Lng, 'f', 6, 64),
			rec.DisplayTownship(),
			rec.MapsLink(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
