// Package search provides the DuckDuckGo retrieval client.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/predictcheck/hindsight/internal/models"
	"golang.org/x/net/html"
)

// DuckDuckGoClient retrieves evidence through the DuckDuckGo instant answer
// API. It needs no API key, which makes it a usable fallback when SerpAPI is
// not configured, at the cost of much weaker coverage for recent events.
type DuckDuckGoClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewDuckDuckGoClient creates a new DuckDuckGo client.
func NewDuckDuckGoClient() *DuckDuckGoClient {
	return &DuckDuckGoClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.duckduckgo.com/",
	}
}

// Name returns the source name.
func (c *DuckDuckGoClient) Name() string {
	return "duckduckgo"
}

type ddgResponse struct {
	Abstract      string `json:"Abstract"`
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search queries the instant answer API and returns up to maxResults
// snippets. When the API returns only an abstract URL without text, the
// linked page is fetched and its first paragraphs used as the snippet.
func (c *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]models.Snippet, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamServiceError{Service: "duckduckgo", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.UpstreamServiceError{Service: "duckduckgo", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamServiceError{
			Service:    "duckduckgo",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &models.UpstreamServiceError{Service: "duckduckgo", Err: fmt.Errorf("invalid response body: %w", err)}
	}

	var snippets []models.Snippet

	if parsed.Abstract != "" {
		snippets = append(snippets, models.Snippet{
			Text:   parsed.Abstract,
			Source: c.Name(),
			Link:   parsed.AbstractURL,
		})
	} else if parsed.AbstractURL != "" {
		if text := c.fetchPageText(ctx, parsed.AbstractURL); text != "" {
			snippets = append(snippets, models.Snippet{
				Text:   text,
				Source: c.Name(),
				Link:   parsed.AbstractURL,
			})
		}
	}

	for _, topic := range parsed.RelatedTopics {
		if len(snippets) >= maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		snippets = append(snippets, models.Snippet{
			Text:   topic.Text,
			Source: c.Name(),
			Link:   topic.FirstURL,
		})
	}

	if len(snippets) > maxResults {
		snippets = snippets[:maxResults]
	}
	return snippets, nil
}

// fetchPageText pulls the linked page and extracts the first few paragraphs.
// Failures here degrade to an empty snippet rather than an error: the instant
// answer already succeeded, this is best-effort enrichment.
func (c *DuckDuckGoClient) fetchPageText(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return ""
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(paragraphs) >= 3 {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(nodeText(n))
			if len(text) > 80 {
				paragraphs = append(paragraphs, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	joined := strings.Join(paragraphs, " ")
	if len(joined) > 1000 {
		joined = joined[:1000]
	}
	return joined
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(nodeText(child))
	}
	return sb.String()
}
