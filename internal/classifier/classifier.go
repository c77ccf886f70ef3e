// Package classifier assigns townships to WGS84 points by delegating to an
// external large-language-model service. The output is natural-language
// derived and untrusted; callers validate every returned township against
// the vocabulary and match results back to their batch strictly by id.
package classifier

import "context"

// Point is one coordinate submitted for classification.
type Point struct {
	ID  int     `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Result is the model's best-effort answer for one point. Township is raw
// model text at this layer; it may be invalid or belong to no submitted id.
type Result struct {
	ID       int    `json:"id"`
	Township string `json:"township"`
}

// Classifier is the external-collaborator boundary. Implementations may
// fail outright, return partial results, or return townships outside the
// vocabulary; the batch orchestrator owns the consequences.
type Classifier interface {
	Classify(ctx context.Context, batch []Point) ([]Result, error)
}
