// Package search provides the SerpAPI retrieval client.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/models"
)

// SerpAPIClient retrieves Google results through SerpAPI.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpAPIClient creates a new SerpAPI client. The API key is validated
// here so a missing credential fails before any claim is processed.
func NewSerpAPIClient(cfg *config.SerpAPIConfig) (*SerpAPIClient, error) {
	if cfg.APIKey == "" {
		return nil, models.NewConfigurationError("search.serpapi.api_key", "SerpAPI key is required (set SERPAPI_KEY)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com/search"
	}

	return &SerpAPIClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name returns the source name.
func (c *SerpAPIClient) Name() string {
	return "serpapi"
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search queries SerpAPI and keeps the top maxResults organic result
// snippets. Results without snippet text get a synthetic "title — link"
// snippet so the caller still sees the hit.
func (c *SerpAPIClient) Search(ctx context.Context, query string, maxResults int) ([]models.Snippet, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamServiceError{Service: "serpapi", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.UpstreamServiceError{Service: "serpapi", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamServiceError{
			Service:    "serpapi",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &models.UpstreamServiceError{Service: "serpapi", Err: fmt.Errorf("invalid response body: %w", err)}
	}

	results := parsed.OrganicResults
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	snippets := make([]models.Snippet, 0, len(results))
	for _, r := range results {
		text := r.Snippet
		if text == "" {
			title := r.Title
			if title == "" {
				title = "No Title"
			}
			text = fmt.Sprintf("%s — %s", title, r.Link)
		}
		snippets = append(snippets, models.Snippet{
			Text:   text,
			Source: c.Name(),
			Link:   r.Link,
		})
	}

	return snippets, nil
}
