package domain

import (
	"fmt"
	"strings"
)

// GenerationRequest carries the user input for one generation run. It lives
// only for the duration of that run.
type GenerationRequest struct {
	Title string
	Image EncodedImage
}

// Validate enforces that both inputs are present before any remote call.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" || r.Image.IsZero() {
		return fmt.Errorf("%w: title and photo are both required", ErrInvalidInput)
	}
	return nil
}

// VideoAsset is the merged result of one generation run: the optimized copy
// from the content model plus the rendered thumbnail. It is replaced
// wholesale on every run.
type VideoAsset struct {
	OriginalTitle    string   `json:"original_title"`
	OptimizedTitle   string   `json:"optimized_title"`
	Description      string   `json:"description"`
	Hashtags         []string `json:"hashtags"`
	ViralityScore    int      `json:"virality_score"`
	ViralityAnalysis string   `json:"virality_analysis"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"`
}
