// Package vocab canonicalizes classification output against the closed
// township vocabulary. The model is free-text upstream; nothing it returns
// is written to a record unless this package can resolve it to a vocabulary
// member.
package vocab

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/township-classifier/app/models"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
	"golang.org/x/text/width"
)

// jaroWinklerThreshold gates fuzzy acceptance. Township names are short, so
// the bar stays high; a near-miss like a wrong suffix still clears it while
// a different township does not.
const jaroWinklerThreshold = 0.9

// countyPrefixes are stripped before matching; the model sometimes returns
// fully qualified names.
var countyPrefixes = []string{"臺灣省", "台灣省", "彰化縣"}

// suffixes are the township-type characters tolerated in suffix-dropped
// matching; the model occasionally returns 員林 for 員林市.
var suffixes = []string{"市", "鎮", "鄉"}

// Matcher resolves model-returned township names to vocabulary members.
type Matcher struct {
	names    []string
	bySuffix map[string]string // suffix-stripped name → canonical name
	logger   *zap.Logger
}

// NewMatcher creates a Matcher over the fixed township vocabulary.
func NewMatcher(logger *zap.Logger) *Matcher {
	names := models.Townships()
	bySuffix := make(map[string]string, len(names))
	for _, name := range names {
		bySuffix[stripSuffix(name)] = name
	}
	return &Matcher{
		names:    names,
		bySuffix: bySuffix,
		logger:   logger,
	}
}

// Resolve canonicalizes raw into a vocabulary member. The second return is
// false when the name cannot be resolved; such output counts as a
// classification mismatch upstream.
func (m *Matcher) Resolve(raw string) (string, bool) {
	name := normalize(raw)
	if name == "" {
		return "", false
	}

	// exact
	if models.IsValidTownship(name) {
		return name, true
	}

	// suffix-dropped
	if canonical, ok := m.bySuffix[stripSuffix(name)]; ok {
		return canonical, true
	}

	// fuzzy: Jaro-Winkler plus length-penalized Levenshtein over runes
	best := ""
	bestScore := 0.0
	for _, cand := range m.names {
		score := smetrics.JaroWinkler(name, cand, 0.7, 4)

		levDist := levenshtein.ComputeDistance(name, cand)
		maxLen := math.Max(float64(len([]rune(name))), float64(len([]rune(cand))))
		if levScore := 1.0 - float64(levDist)/maxLen; levScore > score {
			score = levScore
		}

		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	if bestScore >= jaroWinklerThreshold {
		if m.logger != nil {
			m.logger.Debug("Fuzzy township match",
				zap.String("raw", raw),
				zap.String("canonical", best),
				zap.Float64("score", bestScore))
		}
		return best, true
	}

	if m.logger != nil {
		m.logger.Debug("Unresolvable township name", zap.String("raw", raw))
	}
	return "", false
}

// normalize trims, narrows fullwidth characters, unifies 台→臺 and strips
// county qualifiers.
func normalize(raw string) string {
	name := strings.TrimSpace(width.Narrow.String(raw))
	name = strings.ReplaceAll(name, "台", "臺")
	for _, prefix := range countyPrefixes {
		p := strings.ReplaceAll(prefix, "台", "臺")
		name = strings.TrimPrefix(name, p)
	}
	return strings.TrimSpace(name)
}

func stripSuffix(name string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}
