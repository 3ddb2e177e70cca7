package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Catalog API (YouTube Data API v3) configuration
	APIKey            string
	UploadsPlaylistID string

	// Metrics API (YouTube Analytics API v2) OAuth2 credentials,
	// populated from the environment by the deployment's secret store
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRefreshToken string

	// Application configuration
	Port         string
	APIAccessKey string
	LookbackDays int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
