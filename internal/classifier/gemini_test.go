package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractJSONArray(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "Bare_Array",
			input:    `[{"id":1,"township":"彰化市"}]`,
			expected: `[{"id":1,"township":"彰化市"}]`,
			ok:       true,
		},
		{
			name:     "Markdown_Fence",
			input:    "```json\n[{\"id\":1,\"township\":\"鹿港鎮\"}]\n```",
			expected: `[{"id":1,"township":"鹿港鎮"}]`,
			ok:       true,
		},
		{
			name:     "Surrounding_Prose",
			input:    "根據查詢結果如下：[{\"id\":2,\"township\":\"員林市\"}] 以上。",
			expected: `[{"id":2,"township":"員林市"}]`,
			ok:       true,
		},
		{
			name:     "Nested_Arrays",
			input:    `[[1,2],[3,4]] trailing`,
			expected: `[[1,2],[3,4]]`,
			ok:       true,
		},
		{
			name:     "Bracket_In_String",
			input:    `[{"id":1,"township":"田中鎮 [確認]"}]`,
			expected: `[{"id":1,"township":"田中鎮 [確認]"}]`,
			ok:       true,
		},
		{
			name:  "No_Array",
			input: "無法判斷任何座標",
			ok:    false,
		},
		{
			name:  "Unbalanced",
			input: `[{"id":1`,
			ok:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractJSONArray(tc.input)

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestDecodeResults(t *testing.T) {
	results, err := decodeResults("```json\n[{\"id\":3,\"township\":\"福興鄉\"},{\"id\":5,\"township\":\"秀水鄉\"}]\n```")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].ID)
	assert.Equal(t, "福興鄉", results[0].Township)
	assert.Equal(t, 5, results[1].ID)
	assert.Equal(t, "秀水鄉", results[1].Township)
}

func TestDecodeResults_Invalid(t *testing.T) {
	_, err := decodeResults("這批座標都在彰化縣")
	assert.Error(t, err)

	_, err = decodeResults(`["not", "objects"` + "]")
	assert.Error(t, err)
}

func TestGeminiClient_Classify(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"id\":1,\"township\":\"埔心鄉\"}]"}]}}]}`))
	}))
	defer server.Close()

	config := DefaultGeminiConfig("test-key")
	config.BaseURL = server.URL
	client, err := NewGeminiClient(config, zap.NewNop())
	require.NoError(t, err)

	results, err := client.Classify(context.Background(), []Point{{ID: 1, Lat: 23.95, Lng: 120.54}})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, "埔心鄉", results[0].Township)

	// Request carries the batch, the vocabulary contract and the grounding tool.
	require.Len(t, gotReq.Contents, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "id=1")
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Contains(t, gotReq.SystemInstruction.Parts[0].Text, "彰化市")
	require.Len(t, gotReq.Tools, 1)
	assert.NotNil(t, gotReq.Tools[0].GoogleSearch)
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	config := DefaultGeminiConfig("test-key")
	config.BaseURL = server.URL
	client, err := NewGeminiClient(config, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), []Point{{ID: 1, Lat: 24, Lng: 120.5}})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "quota exceeded", upstream.Message)
}

func TestGeminiClient_EmptyBatch(t *testing.T) {
	config := DefaultGeminiConfig("test-key")
	client, err := NewGeminiClient(config, zap.NewNop())
	require.NoError(t, err)

	results, err := client.Classify(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(GeminiConfig{}, zap.NewNop())
	assert.Error(t, err)
}
