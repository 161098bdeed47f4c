package catalog

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin pass-through client for the external song catalog API.
// Responses are returned as raw JSON; the engine never interprets catalog
// payloads beyond the song id and genre the frontend sends back.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search queries the catalog for songs matching the query string.
func (c *Client) Search(query string, limit int) ([]byte, error) {
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.get("/search/songs", params)
}

// Trending fetches the current trending songs.
func (c *Client) Trending(limit int) ([]byte, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.get("/modules", params)
}

// Song fetches one song by catalog id.
func (c *Client) Song(id string) ([]byte, error) {
	params := url.Values{}
	params.Set("id", id)
	return c.get("/songs", params)
}

func (c *Client) get(path string, params url.Values) ([]byte, error) {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	resp, err := c.HTTP.Get(u)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog response read failed: %w", err)
	}
	return body, nil
}
