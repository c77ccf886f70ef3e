package models

import (
	"fmt"
)

// RawCoordinatePair is one TWD97 planar pair extracted from input text.
type RawCoordinatePair struct {
	X float64 `json:"x"` // easting (meters)
	Y float64 `json:"y"` // northing (meters)
}

// CoordinateRecord is the unit of work flowing through the pipeline.
// ID is assigned by 1-based position in the parsed sequence and identifies
// the record for the whole run; classification results are matched back
// strictly by ID.
type CoordinateRecord struct {
	ID        int     `json:"id"`
	OriginalX float64 `json:"twd97_x"` // source TWD97 easting, kept for export
	OriginalY float64 `json:"twd97_y"` // source TWD97 northing, kept for export
	Lat       float64 `json:"lat"`     // WGS84 degrees, computed once at ingestion
	Lng       float64 `json:"lng"`     // WGS84 degrees, computed once at ingestion
	Township  string  `json:"township"` // empty until classified; vocabulary member or TownshipFailed
	Status    string  `json:"status"`
}

// Status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// IsValidStatus checks the status against the known lifecycle states.
func (cr *CoordinateRecord) IsValidStatus() bool {
	validStatuses := []string{
		StatusPending,
		StatusProcessing,
		StatusCompleted,
		StatusError,
	}

	for _, validStatus := range validStatuses {
		if cr.Status == validStatus {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the record has finished its processing pass.
func (cr *CoordinateRecord) IsTerminal() bool {
	return cr.Status == StatusCompleted || cr.Status == StatusError
}

// Fingerprint returns the cache key for this record's geographic position,
// rounded to 5 decimals (about one meter on the ground).
func (cr *CoordinateRecord) Fingerprint() string {
	return fmt.Sprintf("%.5f,%.5f", cr.Lat, cr.Lng)
}

// MapsLink returns the Google Maps URL for this record.
func (cr *CoordinateRecord) MapsLink() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", cr.Lat, cr.Lng)
}

// DisplayTownship returns the township for export. Unresolved records render
// as an explicit "Unknown" placeholder, never blank.
func (cr *CoordinateRecord) DisplayTownship() string {
	if cr.Township == "" || cr.Township == TownshipFailed {
		return "Unknown"
	}
	return cr.Township
}
