package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/vkarasev/tube-snap/app/retry"
)

const (
	defaultBaseURL = "https://youtubeanalytics.googleapis.com/v2"
	tokenURL       = "https://oauth2.googleapis.com/token"
	scope          = "https://www.googleapis.com/auth/yt-analytics.readonly"

	// The bulk report covers the whole channel in one call.
	bulkMaxResults = 200

	dateFormat = "2006-01-02"
)

// Credentials holds the OAuth2 refresh-token grant for the Analytics API.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client talks to the YouTube Analytics API v2. The underlying HTTP client
// refreshes its access token transparently from the stored refresh token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      retry.Policy
}

func NewClient(ctx context.Context, creds Credentials) *Client {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		Scopes:       []string{scope},
	}

	token := &oauth2.Token{RefreshToken: creds.RefreshToken}

	return &Client{
		httpClient: conf.Client(ctx, token),
		baseURL:    defaultBaseURL,
		retry:      retry.DefaultPolicy(),
	}
}

// VideoActivity fetches day-level activity for every video in one bulk
// call (dimensions=video) and filters the response down to the given ID
// set. Missing videos are a valid outcome, not an error.
func (c *Client) VideoActivity(ctx context.Context, videoIDs []string, day time.Time) ([]ActivityRow, error) {
	dateStr := day.Format(dateFormat)

	params := url.Values{}
	params.Set("ids", "channel==MINE")
	params.Set("startDate", dateStr)
	params.Set("endDate", dateStr)
	params.Set("dimensions", "video")
	params.Set("metrics", "estimatedMinutesWatched,averageViewDuration,averageViewPercentage,subscribersGained,subscribersLost,shares")
	params.Set("sort", "-estimatedMinutesWatched")
	params.Set("maxResults", strconv.Itoa(bulkMaxResults))

	var resp reportResponse
	err := c.retry.Do(ctx, func() error {
		return c.getJSON(ctx, params, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("bulk activity query failed: %w", err)
	}

	idSet := make(map[string]struct{}, len(videoIDs))
	for _, id := range videoIDs {
		idSet[id] = struct{}{}
	}

	var rows []ActivityRow
	for _, row := range resp.Rows {
		if len(row) < 7 {
			continue
		}
		videoID := rowString(row, 0)
		if _, ok := idSet[videoID]; !ok {
			continue
		}

		rows = append(rows, ActivityRow{
			VideoID:                    videoID,
			EstimatedMinutesWatched:    rowInt64(row, 1),
			AverageViewDurationSeconds: rowInt64(row, 2),
			AverageViewPercentage:      rowFloat64(row, 3),
			SubscribersGained:          rowInt64(row, 4),
			SubscribersLost:            rowInt64(row, 5),
			Shares:                     rowInt64(row, 6),
		})
	}

	slog.Debug("Fetched bulk activity report", "videos", len(rows), "date", dateStr)

	return rows, nil
}

// TrafficSources fetches the traffic-source breakdown for each video. The
// upstream cannot batch the insightTrafficSourceType dimension across
// videos, so this is one call per video; a failure after retries is
// captured in that video's result and the remaining videos proceed.
func (c *Client) TrafficSources(ctx context.Context, videoIDs []string, day time.Time) []TrafficResult {
	dateStr := day.Format(dateFormat)
	results := make([]TrafficResult, 0, len(videoIDs))

	for _, videoID := range videoIDs {
		params := url.Values{}
		params.Set("ids", "channel==MINE")
		params.Set("startDate", dateStr)
		params.Set("endDate", dateStr)
		params.Set("dimensions", "insightTrafficSourceType")
		params.Set("metrics", "views,estimatedMinutesWatched")
		params.Set("filters", "video=="+videoID)

		var resp reportResponse
		err := c.retry.Do(ctx, func() error {
			return c.getJSON(ctx, params, &resp)
		})
		if err != nil {
			slog.Warn("Traffic source query failed", "video_id", videoID, "error", err)
			results = append(results, TrafficResult{VideoID: videoID, Err: err})
			continue
		}

		var rows []TrafficRow
		for _, row := range resp.Rows {
			if len(row) < 3 {
				continue
			}
			rows = append(rows, TrafficRow{
				VideoID:                 videoID,
				SourceType:              rowString(row, 0),
				Views:                   rowInt64(row, 1),
				EstimatedMinutesWatched: rowInt64(row, 2),
			})
		}

		results = append(results, TrafficResult{VideoID: videoID, Rows: rows})
	}

	return results
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out *reportResponse) error {
	requestURL := c.baseURL + "/reports?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
		if isTransientStatus(resp.StatusCode) {
			return retry.Transient(err)
		}
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Transient(fmt.Errorf("failed to read response body: %w", err))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Report rows are positional and mixed-type: dimension values decode as
// strings, metric values as float64.
func rowString(row []any, i int) string {
	if s, ok := row[i].(string); ok {
		return s
	}
	return ""
}

func rowFloat64(row []any, i int) float64 {
	if f, ok := row[i].(float64); ok {
		return f
	}
	return 0
}

func rowInt64(row []any, i int) int64 {
	return int64(rowFloat64(row, i))
}
