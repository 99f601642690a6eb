package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/metrics"
)

// SeasonTypeRegular is the only season type this pipeline ingests.
const SeasonTypeRegular = "Regular Season"

// Client is the stats.nba.com API client. The host hangs under load and
// rejects requests without browser-looking headers, so every call goes
// through get() with the required header set; deadline and retry policy
// live in the fetcher, not here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stats.nba.com client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ResultSet is one named block of a stats.nba.com response: a header list
// and a row list, with no guaranteed shape across calls.
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Payload is a raw stats.nba.com response. The host returns either a
// "resultSets" list (plural) or a single "resultSet" depending on the
// endpoint and, occasionally, on its mood; both shapes are kept so the
// caller can fall back from one to the other.
type Payload struct {
	ResultSets []ResultSet `json:"resultSets"`
	ResultSet  *ResultSet  `json:"resultSet"`
}

// get performs a GET request with the headers stats.nba.com requires.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request successful")

	return body, nil
}

// FetchPlayerInfo fetches display/first/last name fields for a player
// from the commonplayerinfo endpoint. Returns the raw payload; the
// resolver extracts what it needs.
func (c *Client) FetchPlayerInfo(ctx context.Context, nbaPlayerID int) (*Payload, error) {
	body, err := c.get(ctx, "commonplayerinfo", map[string]string{
		"PlayerID": fmt.Sprintf("%d", nbaPlayerID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player info: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player info: %w", err)
	}

	return &payload, nil
}

// FetchGameLog fetches the raw regular-season game log payload for one
// player and season ("YYYY-YY" label).
func (c *Client) FetchGameLog(ctx context.Context, nbaPlayerID int, season string) (*Payload, error) {
	body, err := c.get(ctx, "playergamelog", map[string]string{
		"PlayerID":   fmt.Sprintf("%d", nbaPlayerID),
		"Season":     season,
		"SeasonType": SeasonTypeRegular,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game log: %w", err)
	}

	return &payload, nil
}
