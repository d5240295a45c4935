package cards

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// baseURL is the root endpoint for the official Clash Royale API.
const baseURL = "https://api.clashroyale.com/v1"

// Client is a minimal Clash Royale API client, used only to refresh the
// local card catalog.
type Client struct {
	apiKey string
	http   *http.Client
}

// NewClient returns an API client authenticated with the given token.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchCards downloads the card catalog and returns the raw JSON body,
// which ParseCatalog accepts as-is.
func (c *Client) FetchCards() ([]byte, error) {
	req, err := http.NewRequest("GET", baseURL+"/cards", nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /cards: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read /cards body: %w", err)
	}
	if _, err := ParseCatalog(body); err != nil {
		return nil, fmt.Errorf("verify catalog: %w", err)
	}
	return body, nil
}
