package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vkarasev/tube-snap/app/retry"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    serverURL,
		apiKey:     "test-key",
		playlistID: "UUtest",
		userAgent:  "Tube Snap Test/1.0",
		retry:      retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond},
	}
}

func playlistPage(ids []string, nextToken string) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]interface{}{
			"contentDetails": map[string]string{"videoId": id},
		})
	}
	page := map[string]interface{}{"items": items}
	if nextToken != "" {
		page["nextPageToken"] = nextToken
	}
	return page
}

func TestListVideoIDsPaging(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/playlistItems" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected API key in query, got %q", r.URL.Query().Get("key"))
		}

		switch r.URL.Query().Get("pageToken") {
		case "":
			json.NewEncoder(w).Encode(playlistPage([]string{"vid-1", "vid-2"}, "page-2"))
		case "page-2":
			// vid-2 repeats across the page boundary (pagination race).
			json.NewEncoder(w).Encode(playlistPage([]string{"vid-2", "vid-3"}, ""))
		default:
			t.Errorf("Unexpected page token: %s", r.URL.Query().Get("pageToken"))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, err := client.ListVideoIDs(t.Context())

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected 2 page requests, got %d", requests)
	}

	expected := []string{"vid-1", "vid-2", "vid-3"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %d ids, got %d: %v", len(expected), len(ids), ids)
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("Expected ids[%d] = %q, got %q", i, id, ids[i])
		}
	}
}

func TestListVideoIDsFailsAfterRetries(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, err := client.ListVideoIDs(t.Context())

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if ids != nil {
		t.Errorf("Expected no partial results on failure, got %v", ids)
	}
	// Initial attempt plus 2 retries.
	if requests != 3 {
		t.Errorf("Expected 3 requests, got %d", requests)
	}
}

func TestListVideoIDsRecoversFromRateLimit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(playlistPage([]string{"vid-1"}, ""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, err := client.ListVideoIDs(t.Context())

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(ids) != 1 || ids[0] != "vid-1" {
		t.Errorf("Expected [vid-1], got %v", ids)
	}
}

func videoDetail(id, duration string, views int) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"snippet": map[string]interface{}{
			"title":       "Video " + id,
			"publishedAt": "2026-01-15T10:00:00Z",
			"tags":        []string{"tag1", "tag2"},
			"categoryId":  "22",
			"thumbnails": map[string]interface{}{
				"default": map[string]string{"url": "https://example.com/" + id + "/default.jpg"},
				"high":    map[string]string{"url": "https://example.com/" + id + "/high.jpg"},
			},
		},
		"contentDetails": map[string]string{"duration": duration},
		"statistics": map[string]string{
			"viewCount":     fmt.Sprintf("%d", views),
			"likeCount":     "10",
			"commentCount":  "3",
			"favoriteCount": "0",
		},
	}
}

func TestGetVideoDetailsBatching(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		ids := strings.Split(r.URL.Query().Get("id"), ",")
		batchSizes = append(batchSizes, len(ids))

		items := make([]map[string]interface{}, 0, len(ids))
		for _, id := range ids {
			items = append(items, videoDetail(id, "PT5M", 100))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}))
	defer server.Close()

	ids := make([]string, 61)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid-%02d", i)
	}

	client := newTestClient(server.URL)
	videos, err := client.GetVideoDetails(t.Context(), ids)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(videos) != 61 {
		t.Fatalf("Expected 61 videos, got %d", len(videos))
	}
	if len(batchSizes) != 2 || batchSizes[0] != 50 || batchSizes[1] != 11 {
		t.Errorf("Expected batches [50 11], got %v", batchSizes)
	}

	// Discovered order is preserved across batch merges.
	for i, video := range videos {
		if video.ID != ids[i] {
			t.Fatalf("Expected videos[%d].ID = %q, got %q", i, ids[i], video.ID)
		}
	}
}

func TestGetVideoDetailsDropsMissingVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// vid-2 was deleted between enumeration and detail fetch.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				videoDetail("vid-1", "PT2M", 500),
				videoDetail("vid-3", "PT10M", 900),
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	videos, err := client.GetVideoDetails(t.Context(), []string{"vid-1", "vid-2", "vid-3"})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "vid-1" || videos[1].ID != "vid-3" {
		t.Errorf("Expected [vid-1 vid-3], got [%s %s]", videos[0].ID, videos[1].ID)
	}
}

func TestGetVideoDetailsParsesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{videoDetail("vid-1", "PT1H2M3S", 12345)},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	videos, err := client.GetVideoDetails(t.Context(), []string{"vid-1"})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(videos))
	}

	video := videos[0]
	if video.Title != "Video vid-1" {
		t.Errorf("Expected title 'Video vid-1', got %q", video.Title)
	}
	if video.DurationSeconds != 3723 {
		t.Errorf("Expected duration 3723, got %d", video.DurationSeconds)
	}
	if video.DurationFormatted != "1:02:03" {
		t.Errorf("Expected formatted duration '1:02:03', got %q", video.DurationFormatted)
	}
	if video.VideoType != VideoTypeFullLength {
		t.Errorf("Expected video type %q, got %q", VideoTypeFullLength, video.VideoType)
	}
	if video.ViewCount != 12345 {
		t.Errorf("Expected view count 12345, got %d", video.ViewCount)
	}
	// No maxres thumbnail in the response, high is next in preference.
	if video.ThumbnailURL != "https://example.com/vid-1/high.jpg" {
		t.Errorf("Expected high thumbnail, got %q", video.ThumbnailURL)
	}
	if len(video.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(video.Tags))
	}
}

func TestGetVideoDetailsMalformedDurationDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{videoDetail("vid-1", "garbage", 100)},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	videos, err := client.GetVideoDetails(t.Context(), []string{"vid-1"})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(videos))
	}
	if videos[0].DurationSeconds != 0 {
		t.Errorf("Expected zero duration for malformed token, got %d", videos[0].DurationSeconds)
	}
	if videos[0].DurationFormatted != "0:00" {
		t.Errorf("Expected '0:00', got %q", videos[0].DurationFormatted)
	}
	if videos[0].VideoType != VideoTypeShort {
		t.Errorf("Expected zero-duration video classified short, got %q", videos[0].VideoType)
	}
}
