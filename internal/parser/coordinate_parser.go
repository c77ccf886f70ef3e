// Package parser extracts TWD97 coordinate pairs from loosely structured
// text. This is best-effort extraction, not a validating parser: lines that
// do not yield a plausible pair are silently dropped.
package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/township-classifier/app/models"
	"go.uber.org/zap"
	"golang.org/x/text/width"
)

// Plausibility bounds for Taiwan's TM2 false-easting/false-northing
// convention. Pairs below either threshold are not TWD97 coordinates.
const (
	minEasting  = 100000.0
	minNorthing = 1000000.0
)

// headerTokens are column-name fragments that mark a line as a header row.
var headerTokens = []string{
	"twd97", "x", "y", "easting", "northing", "座標", "點位", "名稱", "編號",
}

// CoordinateParser extracts raw coordinate pairs from pasted or file-derived
// text.
type CoordinateParser struct {
	logger *zap.Logger
}

// NewCoordinateParser creates a new CoordinateParser.
func NewCoordinateParser(logger *zap.Logger) *CoordinateParser {
	return &CoordinateParser{logger: logger}
}

// Parse splits text into lines and extracts one TWD97 pair per surviving
// line. Order is preserved; it determines record ID assignment downstream.
// Empty or fully-header input yields an empty slice, never an error.
func (cp *CoordinateParser) Parse(text string) []models.RawCoordinatePair {
	var pairs []models.RawCoordinatePair
	dropped := 0

	for _, line := range strings.Split(text, "\n") {
		// Pasted Chinese text often carries fullwidth digits and commas.
		line = strings.TrimSpace(width.Narrow.String(line))
		if line == "" {
			continue
		}

		tokens := splitTokens(line)
		if len(tokens) < 2 {
			dropped++
			continue
		}
		if isHeaderLine(tokens) {
			dropped++
			continue
		}

		// The pair sits in the last two tokens; leading tokens are
		// descriptive columns such as point names.
		x, errX := strconv.ParseFloat(tokens[len(tokens)-2], 64)
		y, errY := strconv.ParseFloat(tokens[len(tokens)-1], 64)
		if errX != nil || errY != nil {
			dropped++
			continue
		}
		// ParseFloat accepts "NaN" and "Inf"; both values are finite-only here.
		if !isFinite(x) || !isFinite(y) {
			dropped++
			continue
		}
		if x <= minEasting || y <= minNorthing {
			dropped++
			continue
		}

		pairs = append(pairs, models.RawCoordinatePair{X: x, Y: y})
	}

	if cp.logger != nil && dropped > 0 {
		cp.logger.Debug("Dropped unparsable lines",
			zap.Int("dropped", dropped),
			zap.Int("accepted", len(pairs)))
	}
	return pairs
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// splitTokens splits a line on runs of comma, tab, or whitespace.
func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '\t' || unicode.IsSpace(r)
	})
}

// isHeaderLine reports whether any token matches a known column name.
func isHeaderLine(tokens []string) bool {
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		for _, h := range headerTokens {
			if lower == h {
				return true
			}
		}
	}
	return false
}
