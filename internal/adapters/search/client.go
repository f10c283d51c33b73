// Package search talks to the public video search API used by remotes
// to find songs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUpstream = errors.New("search upstream failed")

type Config struct {
	BaseURL string
	Suffix  string
	Limit   int
	Timeout time.Duration
}

type Client struct {
	baseURL string
	suffix  string
	limit   int
	client  *http.Client
	headers map[string]string
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		suffix:  cfg.Suffix,
		limit:   cfg.Limit,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{"Accept": "application/json"},
	}
}

func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

type searchResponse struct {
	Result []rawVideo `json:"result"`
}

type rawVideo struct {
	VideoID    string          `json:"videoId"`
	Title      string          `json:"title"`
	Thumbnail  json.RawMessage `json:"thumbnail"`
	Duration   json.RawMessage `json:"duration"`
	AuthorName string          `json:"authorName"`
}

// Search returns up to the configured number of videos for query, with
// the suffix appended so results lean towards karaoke tracks.
func (c *Client) Search(ctx context.Context, query string) ([]domain.QueueItem, error) {
	q := strings.TrimSpace(query)
	if c.suffix != "" {
		q += " " + c.suffix
	}
	endpoint := "/youtube/search?video=" + url.QueryEscape(q)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	items := make([]domain.QueueItem, 0, len(resp.Result))
	for _, v := range resp.Result {
		if v.VideoID == "" {
			continue
		}
		items = append(items, domain.QueueItem{
			VideoID:    v.VideoID,
			Title:      v.Title,
			Thumbnail:  stringOrEmpty(v.Thumbnail),
			Duration:   FormatDuration(v.Duration),
			AuthorName: v.AuthorName,
		})
		if c.limit > 0 && len(items) == c.limit {
			break
		}
	}
	log.Debug().Str("module", "search").Str("query", query).Int("results", len(items)).Msg("search done")
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return body, nil
}

func stringOrEmpty(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// FormatDuration accepts the duration either as display text ("3:45")
// or as a number of seconds, and returns display text.
func FormatDuration(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return clock(secs)
		}
		return s
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil {
		return clock(secs)
	}
	return ""
}

func clock(secs float64) string {
	if secs < 0 {
		return ""
	}
	total := int(secs)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
