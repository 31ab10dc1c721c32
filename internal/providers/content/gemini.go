package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viralstudio/internal/domain"
)

const defaultTimeout = 60 * time.Second

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client asks the Gemini text endpoint for optimized video copy. One request
// per call, no retry: any failure propagates to the orchestrator.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("content: gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: opts.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type contentPayload struct {
	OptimizedTitle   string   `json:"optimizedTitle"`
	Description      string   `json:"description"`
	Hashtags         []string `json:"hashtags"`
	ViralityScore    *float64 `json:"viralityScore"`
	ViralityAnalysis string   `json:"viralityAnalysis"`
}

// videoSchema pins the structured output contract: every field is required.
func videoSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"optimizedTitle":   {Type: "STRING"},
			"description":      {Type: "STRING"},
			"hashtags":         {Type: "ARRAY", Items: &schema{Type: "STRING"}},
			"viralityScore":    {Type: "NUMBER"},
			"viralityAnalysis": {Type: "STRING"},
		},
		Required: []string{"optimizedTitle", "description", "hashtags", "viralityScore", "viralityAnalysis"},
	}
}

// Generate produces the optimized copy for one title. The returned asset has
// no thumbnail yet; the orchestrator fills that in.
func (c *Client) Generate(ctx context.Context, title string) (*domain.VideoAsset, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{{
				Text: fmt.Sprintf("Optimize this YouTube video title: %q. Generate a viral description, high-ranking hashtags, a virality score (1-100), and a brief analysis.", title),
			}},
		}},
		GenerationConfig: &generationConfig{
			CandidateCount:   1,
			ResponseMimeType: "application/json",
			ResponseSchema:   videoSchema(),
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("content: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, fmt.Errorf("content: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: content request: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: content endpoint returned http %d", domain.ErrProviderFailure, resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode content response: %v", domain.ErrProviderFailure, err)
	}
	text := firstText(out)
	if text == "" {
		return nil, fmt.Errorf("%w: content response carried no text", domain.ErrProviderFailure)
	}
	parsed, err := parsePayload(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return &domain.VideoAsset{
		OriginalTitle:    title,
		OptimizedTitle:   parsed.OptimizedTitle,
		Description:      parsed.Description,
		Hashtags:         parsed.Hashtags,
		ViralityScore:    clampScore(*parsed.ViralityScore),
		ViralityAnalysis: parsed.ViralityAnalysis,
	}, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

func firstText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func parsePayload(raw string) (*contentPayload, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, errors.New("empty content payload")
	}
	var parsed contentPayload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("malformed content payload: %v", err)
	}
	switch {
	case strings.TrimSpace(parsed.OptimizedTitle) == "":
		return nil, errors.New("content payload missing optimizedTitle")
	case strings.TrimSpace(parsed.Description) == "":
		return nil, errors.New("content payload missing description")
	case parsed.Hashtags == nil:
		return nil, errors.New("content payload missing hashtags")
	case parsed.ViralityScore == nil:
		return nil, errors.New("content payload missing viralityScore")
	case strings.TrimSpace(parsed.ViralityAnalysis) == "":
		return nil, errors.New("content payload missing viralityAnalysis")
	}
	return &parsed, nil
}

func clampScore(score float64) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}

// Models occasionally wrap JSON in markdown fences even when asked not to.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
