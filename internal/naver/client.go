// Package naver verifies book reports against the Naver book search API.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/readornot/readornot/internal/models"
)

const defaultBaseURL = "https://openapi.naver.com/v1/search/book.json"

// maxResults caps how many candidate items a search may return.
const maxResults = 10

// Client is a Naver book search API client
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	httpClient   *http.Client
}

// bookItem is one search result. Text fields may carry HTML fragments.
type bookItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Pubdate     string `json:"pubdate"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

type searchResponse struct {
	Total   int        `json:"total"`
	Start   int        `json:"start"`
	Display int        `json:"display"`
	Items   []bookItem `json:"items"`
}

// NewClient creates a new book search client
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:      defaultBaseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Verify searches for "{title} {author}" and decides whether the book exists.
// An empty result set is a found=false outcome, not an error; only transport
// or HTTP failures return an error.
func (c *Client) Verify(ctx context.Context, title, author string) (models.BookVerification, error) {
	query := fmt.Sprintf("%s %s", title, author)

	searchURL := fmt.Sprintf("%s?query=%s&display=%d", c.BaseURL, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return models.BookVerification{}, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.BookVerification{}, fmt.Errorf("failed to query book search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return models.BookVerification{}, fmt.Errorf("네이버 API 오류: %d %s", resp.StatusCode, string(body))
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return models.BookVerification{}, fmt.Errorf("failed to decode search response: %w", err)
	}

	// First pass: title and author both match.
	for _, item := range search.Items {
		if matches(title, item.Title) && matches(author, item.Author) {
			return verificationFrom(item), nil
		}
	}

	// Second pass: title alone. The author field often carries translators
	// or editors, so a title hit is still treated as found.
	for _, item := range search.Items {
		if matches(title, item.Title) {
			return verificationFrom(item), nil
		}
	}

	return models.BookVerification{Found: false}, nil
}

func verificationFrom(item bookItem) models.BookVerification {
	return models.BookVerification{
		Found:         true,
		MatchedTitle:  stripHTML(item.Title),
		MatchedAuthor: stripHTML(item.Author),
		Description:   stripHTML(item.Description),
		ISBN:          item.ISBN,
		Thumbnail:     item.Image,
	}
}
