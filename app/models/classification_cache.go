package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassificationEntry is one cached coordinate→township classification.
// Keyed by the coordinate fingerprint (lat,lng rounded to 5 decimals), so two
// uploads of the same point reuse the earlier model answer instead of paying
// for another classification call.
type ClassificationEntry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint       string             `bson:"fingerprint" json:"fingerprint"`             // "lat,lng" rounded to 5 decimals
	Lat               float64            `bson:"lat" json:"lat"`                             // WGS84 latitude
	Lng               float64            `bson:"lng" json:"lng"`                             // WGS84 longitude
	Township          string             `bson:"township" json:"township"`                   // vocabulary member
	Source            string             `bson:"source" json:"source"`                       // which classifier produced it
	VocabularyVersion string             `bson:"vocabulary_version" json:"vocabulary_version"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed      time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount       int                `bson:"access_count" json:"access_count"`
}

// Source constants
const (
	SourceGemini = "gemini"
	SourceManual = "manual"
)

// NewClassificationEntry builds an entry for a freshly classified record.
func NewClassificationEntry(rec *CoordinateRecord, source string) *ClassificationEntry {
	now := time.Now()
	return &ClassificationEntry{
		Fingerprint:       rec.Fingerprint(),
		Lat:               rec.Lat,
		Lng:               rec.Lng,
		Township:          rec.Township,
		Source:            source,
		VocabularyVersion: VocabularyVersion,
		CreatedAt:         now,
		LastAccessed:      now,
		AccessCount:       1,
	}
}

// UpdateAccess bumps the access bookkeeping on a cache hit.
func (ce *ClassificationEntry) UpdateAccess() {
	ce.LastAccessed = time.Now()
	ce.AccessCount++
}

// IsExpired checks the entry age against a TTL in hours.
func (ce *ClassificationEntry) IsExpired(ttlHours int) bool {
	return time.Since(ce.CreatedAt) > time.Duration(ttlHours)*time.Hour
}

// IsValidVocabularyVersion checks the entry against the current vocabulary.
func (ce *ClassificationEntry) IsValidVocabularyVersion(currentVersion string) bool {
	return ce.VocabularyVersion == currentVersion
}
