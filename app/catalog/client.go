package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vkarasev/tube-snap/app/retry"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// Upstream ceiling for both playlistItems pages and videos.list batches.
	pageSize        = 50
	detailBatchSize = 50
)

// Client talks to the YouTube Data API v3 with key-based auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	playlistID string
	userAgent  string
	retry      retry.Policy
}

func NewClient(httpClient *http.Client, apiKey, uploadsPlaylistID, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		playlistID: uploadsPlaylistID,
		userAgent:  userAgent,
		retry:      retry.DefaultPolicy(),
	}
}

// ListVideoIDs pages through the uploads playlist and returns every member
// video ID, in discovered order, deduplicated across pages. Callers get
// either the complete list or an error, never a partial one.
func (c *Client) ListVideoIDs(ctx context.Context) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", c.playlistID)
		params.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page playlistItemsResponse
		err := c.retry.Do(ctx, func() error {
			return c.getJSON(ctx, "/playlistItems", params, &page)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate uploads playlist: %w", err)
		}

		for _, item := range page.Items {
			id := item.ContentDetails.VideoID
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	slog.Debug("Enumerated uploads playlist", "videos", len(ids))

	return ids, nil
}

// GetVideoDetails resolves IDs to full Video entries in batches of at most
// 50, one videos.list call per batch (snippet, contentDetails, statistics
// in a single request to keep the metered call count down). Results keep
// the originally discovered order. IDs absent from the response (deleted
// or privated between calls) are dropped and counted, not fatal.
func (c *Client) GetVideoDetails(ctx context.Context, ids []string) ([]Video, error) {
	byID := make(map[string]Video, len(ids))

	for start := 0; start < len(ids); start += detailBatchSize {
		end := min(start+detailBatchSize, len(ids))
		batch := ids[start:end]

		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics")
		params.Set("id", strings.Join(batch, ","))

		var resp videoListResponse
		err := c.retry.Do(ctx, func() error {
			return c.getJSON(ctx, "/videos", params, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch video details: %w", err)
		}

		for _, item := range resp.Items {
			byID[item.ID] = c.parseVideoItem(item)
		}

		slog.Debug("Fetched video detail batch", "batch", start/detailBatchSize+1, "requested", len(batch), "returned", len(resp.Items))
	}

	videos := make([]Video, 0, len(ids))
	missing := 0
	for _, id := range ids {
		video, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		videos = append(videos, video)
	}

	if missing > 0 {
		slog.Warn("Videos missing from detail responses", "missing", missing, "requested", len(ids))
	}

	return videos, nil
}

func (c *Client) parseVideoItem(item videoItem) Video {
	durationSeconds, err := ParseDuration(item.ContentDetails.Duration)
	if err != nil {
		// Data-shape problem for one item must not kill the batch.
		slog.Warn("Malformed duration token, defaulting to zero", "video_id", item.ID, "duration", item.ContentDetails.Duration)
		durationSeconds = 0
	}

	return Video{
		ID:                item.ID,
		Title:             item.Snippet.Title,
		PublishedAt:       item.Snippet.PublishedAt,
		DurationSeconds:   durationSeconds,
		DurationFormatted: FormatDuration(durationSeconds),
		VideoType:         ClassifyVideoType(durationSeconds),
		Tags:              item.Snippet.Tags,
		CategoryID:        item.Snippet.CategoryID,
		ThumbnailURL:      c.pickThumbnail(item),
		ViewCount:         parseCount(item.Statistics.ViewCount),
		LikeCount:         parseCount(item.Statistics.LikeCount),
		CommentCount:      parseCount(item.Statistics.CommentCount),
		FavoriteCount:     parseCount(item.Statistics.FavoriteCount),
	}
}

func (c *Client) pickThumbnail(item videoItem) string {
	for _, key := range []string{"maxres", "high", "default"} {
		if thumb, ok := item.Snippet.Thumbnails[key]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	requestURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
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

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
