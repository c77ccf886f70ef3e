package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestMatcher() *Matcher {
	return NewMatcher(zap.NewNop())
}

func TestResolve_Exact(t *testing.T) {
	m := newTestMatcher()

	got, ok := m.Resolve("埔心鄉")

	assert.True(t, ok)
	assert.Equal(t, "埔心鄉", got)
}

func TestResolve_CountyPrefixStripped(t *testing.T) {
	m := newTestMatcher()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "County_Prefix", input: "彰化縣員林市", expected: "員林市"},
		{name: "Full_Qualifier", input: "臺灣省彰化縣鹿港鎮", expected: "鹿港鎮"},
		{name: "Surrounding_Space", input: "  田中鎮 ", expected: "田中鎮"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.Resolve(tc.input)

			assert.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestResolve_SuffixDropped(t *testing.T) {
	m := newTestMatcher()

	got, ok := m.Resolve("員林")

	assert.True(t, ok)
	assert.Equal(t, "員林市", got)
}

func TestResolve_OutdatedSuffix(t *testing.T) {
	m := newTestMatcher()

	// The model sometimes reports an outdated suffix; 員林 was promoted from
	// 鎮 to 市.
	got, ok := m.Resolve("員林鎮")

	assert.True(t, ok)
	assert.Equal(t, "員林市", got)
}

func TestResolve_Invalid(t *testing.T) {
	m := newTestMatcher()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "Empty", input: ""},
		{name: "Whitespace", input: "   "},
		{name: "Other_County", input: "板橋區"},
		{name: "Hallucination", input: "中央鄉"},
		{name: "Prose", input: "這個座標位於彰化縣某處"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := m.Resolve(tc.input)

			assert.False(t, ok)
		})
	}
}
