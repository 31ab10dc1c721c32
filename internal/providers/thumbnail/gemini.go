package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viralstudio/internal/domain"
)

const defaultTimeout = 120 * time.Second

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client renders a thumbnail from a source photo and a title via the Gemini
// image model. Single attempt, no retry.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("thumbnail: gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: opts.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends the source image inline plus the composed instruction and
// returns the first image part of the response as an EncodedImage. It fails
// with domain.ErrNoImage when the model answers without any image part.
func (c *Client) Generate(ctx context.Context, source domain.EncodedImage, title string) (domain.EncodedImage, error) {
	if source.IsZero() {
		return domain.EncodedImage{}, fmt.Errorf("%w: source image is required", domain.ErrInvalidInput)
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &inlineData{
					MimeType: source.MimeType,
					Data:     base64.StdEncoding.EncodeToString(source.Data),
				}},
				{Text: BuildInstruction(title)},
			},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("thumbnail: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("thumbnail: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: thumbnail request: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return domain.EncodedImage{}, fmt.Errorf("%w: thumbnail endpoint returned http %d", domain.ErrProviderFailure, resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: decode thumbnail response: %v", domain.ErrProviderFailure, err)
	}
	return firstImage(out)
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

// firstImage scans candidate parts for the first one carrying inline image
// data.
func firstImage(resp geminiResponse) (domain.EncodedImage, error) {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return domain.EncodedImage{}, fmt.Errorf("%w: decode image part: %v", domain.ErrProviderFailure, err)
			}
			return domain.EncodedImage{MimeType: part.InlineData.MimeType, Data: data}, nil
		}
	}
	return domain.EncodedImage{}, domain.ErrNoImage
}
