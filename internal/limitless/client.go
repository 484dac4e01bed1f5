// Package limitless is a thin client for the Limitless API: paged lifelog
// retrieval and bounded audio download. All request-size limits live in the
// planner; this package only converts time bounds into wire parameters.
package limitless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/adamthede/project-limitless-exporter/internal/planner"
)

const defaultBaseURL = "https://api.limitless.ai"

// ErrNoAudio is returned when the service has no audio for the requested
// window (HTTP 404). Callers treat it as a skip, not a failure.
var ErrNoAudio = errors.New("no audio for requested window")

type Client struct {
	apiKey   string
	baseURL  string
	timezone string
	client   *http.Client
}

// NewClient creates a client. baseURL may be empty for the production API;
// timezone is the IANA zone name sent with lifelog queries.
func NewClient(apiKey, baseURL, timezone string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		timezone: timezone,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Lifelog is one lifelog entry as returned by /v1/lifelogs.
type Lifelog struct {
	ID       string           `json:"id"`
	Markdown string           `json:"markdown"`
	Contents []planner.Record `json:"contents"`
}

type lifelogsResponse struct {
	Data struct {
		Lifelogs []Lifelog `json:"lifelogs"`
	} `json:"data"`
	Meta struct {
		Lifelogs struct {
			NextCursor string `json:"nextCursor"`
		} `json:"lifelogs"`
	} `json:"meta"`
}

// Lifelogs fetches a single page of lifelogs for a date in ascending order.
// The returned cursor is empty on the last page.
func (c *Client) Lifelogs(ctx context.Context, date, cursor string, limit int) ([]Lifelog, string, error) {
	params := url.Values{
		"date":            {date},
		"limit":           {strconv.Itoa(limit)},
		"includeMarkdown": {"true"},
		"includeHeadings": {"true"},
		"direction":       {"asc"},
	}
	if c.timezone != "" {
		params.Set("timezone", c.timezone)
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/lifelogs?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("lifelogs api error %d: %s", resp.StatusCode, string(body))
	}

	var page lifelogsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}
	return page.Data.Lifelogs, page.Meta.Lifelogs.NextCursor, nil
}

// AllLifelogs pages through every lifelog for a date.
func (c *Client) AllLifelogs(ctx context.Context, date string, pageLimit int) ([]Lifelog, error) {
	var all []Lifelog
	cursor := ""
	for {
		page, next, err := c.Lifelogs(ctx, date, cursor, pageLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

// DownloadAudio streams pendant audio for the window [start, end) to w and
// returns the number of bytes written. The window must respect the
// service's 2-hour limit; the planner guarantees this for plan chunks.
func (c *Client) DownloadAudio(ctx context.Context, start, end time.Time, w io.Writer) (int64, error) {
	params := url.Values{
		"startMs":     {strconv.FormatInt(start.UnixMilli(), 10)},
		"endMs":       {strconv.FormatInt(end.UnixMilli(), 10)},
		"audioSource": {"pendant"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/download-audio?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		n, err := io.Copy(w, resp.Body)
		if err != nil {
			return n, fmt.Errorf("stream audio: %w", err)
		}
		return n, nil
	case http.StatusNotFound:
		return 0, ErrNoAudio
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("audio api error %d: %s", resp.StatusCode, string(body))
	}
}
