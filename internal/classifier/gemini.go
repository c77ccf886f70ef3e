package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/township-classifier/app/models"
	"go.uber.org/zap"
)

// GeminiConfig configures the Gemini classification client.
type GeminiConfig struct {
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	EnableGoogleSearch bool // ground answers with the google_search tool
	Temperature        float64
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:             apiKey,
		BaseURL:            "https://generativelanguage.googleapis.com/v1beta",
		Model:              "gemini-2.5-flash",
		Timeout:            60 * time.Second,
		EnableGoogleSearch: true,
		Temperature:        0.1,
	}
}

// GeminiClient classifies coordinate batches through the Gemini API.
type GeminiClient struct {
	apiKey             string
	baseURL            string
	model              string
	enableGoogleSearch bool
	temperature        float64
	httpClient         *http.Client
	logger             *zap.Logger
}

// NewGeminiClient creates a new Gemini classification client.
func NewGeminiClient(config GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		apiKey:             config.APIKey,
		baseURL:            baseURL,
		model:              model,
		enableGoogleSearch: config.EnableGoogleSearch,
		temperature:        config.Temperature,
		httpClient:         &http.Client{Timeout: timeout},
		logger:             logger,
	}, nil
}

// Request/response wire types (minimal fields).
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGoogleSearch struct{}

type geminiTool struct {
	GoogleSearch *geminiGoogleSearch `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// UpstreamError carries the HTTP status of a failed Gemini call so callers
// can log it; the orchestrator treats it like any other call failure.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini upstream %d: %s", e.Status, e.Message)
}

// Classify submits one batch and returns the model's raw township answers.
func (c *GeminiClient) Classify(ctx context.Context, batch []Point) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildUserPrompt(batch)}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		GenerationConfig: &geminiGenerationConfig{Temperature: c.temperature},
	}
	if c.enableGoogleSearch {
		reqBody.Tools = []geminiTool{{GoogleSearch: &geminiGoogleSearch{}}}
	}

	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := upstreamMessage(body)
		c.logger.Warn("Gemini call failed",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
			zap.Duration("elapsed", time.Since(start)))
		return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: empty response")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	results, err := decodeResults(text.String())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini batch classified",
		zap.Int("batch_size", len(batch)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// systemPrompt pins down the output contract: strict JSON, townships drawn
// from the closed vocabulary only.
var systemPrompt = fmt.Sprintf(`你是台灣行政區判識助手。使用者會提供彰化縣境內座標點（WGS84 經緯度）。
請判斷每個點所在的鄉鎮市，名稱必須完全取自下列清單：
%s
只回覆 JSON 陣列，格式為 [{"id":1,"township":"彰化市"}]，不要附加任何說明文字。
無法判斷的點請省略，不要猜測清單以外的名稱。`, strings.Join(models.Townships(), "、"))

// buildUserPrompt lists the batch one point per line.
func buildUserPrompt(batch []Point) string {
	var b strings.Builder
	b.WriteString("座標點：\n")
	for _, p := range batch {
		fmt.Fprintf(&b, "id=%d lat=%.6f lng=%.6f\n", p.ID, p.Lat, p.Lng)
	}
	return b.String()
}

// decodeResults extracts the first well-formed JSON array from raw model
// output and unmarshals it. The model wraps answers in markdown fences or
// prose often enough that direct unmarshalling is not an option.
func decodeResults(raw string) ([]Result, error) {
	arr, ok := extractJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("gemini: no JSON array in response")
	}
	var results []Result
	if err := json.Unmarshal([]byte(arr), &results); err != nil {
		return nil, fmt.Errorf("gemini: unparsable result array: %w", err)
	}
	return results, nil
}

// extractJSONArray scans raw for the first balanced top-level JSON array,
// ignoring brackets inside string literals.
func extractJSONArray(raw string) (string, bool) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// upstreamMessage pulls the error message out of a non-200 body, falling
// back to a trimmed prefix of the raw body.
func upstreamMessage(body []byte) string {
	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
