package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestParser() *CoordinateParser {
	return NewCoordinateParser(zap.NewNop())
}

func TestParse_HeaderAndGarbageDropped(t *testing.T) {
	cp := newTestParser()

	input := "點位名稱,X,Y\nA,201234.5,2655678.9\nnot,a,pair"
	pairs := cp.Parse(input)

	assert.Len(t, pairs, 1)
	assert.Equal(t, 201234.5, pairs[0].X)
	assert.Equal(t, 2655678.9, pairs[0].Y)
}

func TestParse_Delimiters(t *testing.T) {
	cp := newTestParser()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "Comma", input: "P1,205000.0,2650000.0"},
		{name: "Tab", input: "P1\t205000.0\t2650000.0"},
		{name: "Whitespace_Run", input: "P1   205000.0   2650000.0"},
		{name: "Mixed", input: "P1,\t 205000.0 ,2650000.0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pairs := cp.Parse(tc.input)

			assert.Len(t, pairs, 1)
			assert.Equal(t, 205000.0, pairs[0].X)
			assert.Equal(t, 2650000.0, pairs[0].Y)
		})
	}
}

func TestParse_LastTwoTokensWin(t *testing.T) {
	cp := newTestParser()

	// Variable numbers of leading descriptive columns are tolerated.
	pairs := cp.Parse("站點 甲 備註欄 203111.25 2654222.75")

	assert.Len(t, pairs, 1)
	assert.Equal(t, 203111.25, pairs[0].X)
	assert.Equal(t, 2654222.75, pairs[0].Y)
}

func TestParse_BoundsRejection(t *testing.T) {
	cp := newTestParser()

	// Both tokens parse as numbers but fail the TM2 plausibility bounds.
	pairs := cp.Parse("A,50,50")
	assert.Empty(t, pairs)

	// Swapped columns (northing first) are also implausible.
	pairs = cp.Parse("B,2650000.0,205000.0")
	assert.Empty(t, pairs)
}

func TestParse_NonFiniteRejection(t *testing.T) {
	cp := newTestParser()

	// ParseFloat accepts these spellings without error; none is a coordinate.
	testCases := []struct {
		name  string
		input string
	}{
		{name: "NaN_Pair", input: "A,NaN,NaN"},
		{name: "Inf_Pair", input: "B,Inf,Inf"},
		{name: "Inf_Easting", input: "C,+Inf,2655000"},
		{name: "Inf_Northing", input: "D,205000,Infinity"},
		{name: "NaN_Easting", input: "E,nan,2655000"},
		{name: "Negative_Inf", input: "F,-Inf,2655000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, cp.Parse(tc.input))
		})
	}

	// A finite pair sharing the input still survives.
	pairs := cp.Parse("A,NaN,NaN\nB,205000.0,2650000.0")
	assert.Len(t, pairs, 1)
	assert.Equal(t, 205000.0, pairs[0].X)
}

func TestParse_FullwidthInput(t *testing.T) {
	cp := newTestParser()

	pairs := cp.Parse("Ｐ１，２０５０００．５，２６５００００．５")

	assert.Len(t, pairs, 1)
	assert.Equal(t, 205000.5, pairs[0].X)
	assert.Equal(t, 2650000.5, pairs[0].Y)
}

func TestParse_EmptyAndHeaderOnlyInput(t *testing.T) {
	cp := newTestParser()

	assert.Empty(t, cp.Parse(""))
	assert.Empty(t, cp.Parse("  \n\n  "))
	assert.Empty(t, cp.Parse("點位名稱\tX\tY"))
}

func TestParse_OrderPreserved(t *testing.T) {
	cp := newTestParser()

	input := "A,201000,2651000\nB,202000,2652000\nC,203000,2653000"
	pairs := cp.Parse(input)

	assert.Len(t, pairs, 3)
	assert.Equal(t, 201000.0, pairs[0].X)
	assert.Equal(t, 202000.0, pairs[1].X)
	assert.Equal(t, 203000.0, pairs[2].X)
}
