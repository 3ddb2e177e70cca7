package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/tube-snap.db" description:"Path to the SQLite database file"`

	// Catalog API configuration
	APIKey            string `long:"api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API v3 key (required)" required:"true"`
	UploadsPlaylistID string `long:"uploads-playlist-id" env:"UPLOADS_PLAYLIST_ID" description:"Uploads playlist ID of the channel (UC -> UU prefix) (required)" required:"true"`

	// Metrics API OAuth2 credentials
	OAuthClientID     string `long:"oauth-client-id" env:"YOUTUBE_OAUTH_CLIENT_ID" description:"OAuth2 client ID for the Analytics API"`
	OAuthClientSecret string `long:"oauth-client-secret" env:"YOUTUBE_OAUTH_CLIENT_SECRET" description:"OAuth2 client secret for the Analytics API"`
	OAuthRefreshToken string `long:"oauth-refresh-token" env:"YOUTUBE_OAUTH_REFRESH_TOKEN" description:"OAuth2 refresh token for the Analytics API"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"access-key" env:"API_ACCESS_KEY" description:"Access key guarding the trigger endpoints (optional)"`
	LookbackDays int    `long:"lookback-days" env:"ANALYTICS_LOOKBACK_DAYS" default:"3" description:"Days between run date and the metrics day queried (upstream finalization delay)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Tube Snap/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		APIKey:            raw.APIKey,
		UploadsPlaylistID: raw.UploadsPlaylistID,
		OAuthClientID:     raw.OAuthClientID,
		OAuthClientSecret: raw.OAuthClientSecret,
		OAuthRefreshToken: raw.OAuthRefreshToken,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		LookbackDays:      raw.LookbackDays,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
