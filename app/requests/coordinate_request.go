package requests

// ConvertRequest carries raw TWD97 coordinate text for synchronous
// conversion without township classification.
type ConvertRequest struct {
	Text string `json:"text" binding:"required"` // free-form text containing X/Y pairs
}

// CreateJobRequest starts a batch conversion and classification job.
// Text is optional when the coordinates come as an uploaded workbook.
type CreateJobRequest struct {
	Text string `json:"text,omitempty"` // free-form text containing X/Y pairs
}

// ConvertPairRequest converts a single coordinate pair. Pointers keep the
// required check from rejecting a legitimate zero northing.
type ConvertPairRequest struct {
	X *float64 `json:"twd97_x" binding:"required"` // easting in meters
	Y *float64 `json:"twd97_y" binding:"required"` // northing in meters
}

// InvalidateCacheRequest drops cached classifications from older township
// vocabularies.
type InvalidateCacheRequest struct {
	VocabularyVersion string `json:"vocabulary_version" binding:"required"` // version to keep
}
