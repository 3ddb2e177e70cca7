package catalog

// Video is one fully resolved catalog entry: metadata, derived duration
// fields, and the cumulative public counters as of fetch time.
type Video struct {
	ID                string
	Title             string
	PublishedAt       string
	DurationSeconds   int
	DurationFormatted string
	VideoType         string
	Tags              []string
	CategoryID        string
	ThumbnailURL      string

	ViewCount     int64
	LikeCount     int64
	CommentCount  int64
	FavoriteCount int64
}

type playlistItemsResponse struct {
	Items []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string   `json:"title"`
		PublishedAt string   `json:"publishedAt"`
		Tags        []string `json:"tags"`
		CategoryID  string   `json:"categoryId"`
		Thumbnails  map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount     string `json:"viewCount"`
		LikeCount     string `json:"likeCount"`
		CommentCount  string `json:"commentCount"`
		FavoriteCount string `json:"favoriteCount"`
	} `json:"statistics"`
}
