// Package config reads settings from the environment, after loading a
// .env file when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultChannelID = "UC9uYVKCyi4u9Awmwafg_60Q"
	DefaultMailFrom  = "BuildAtScale <onboarding@resend.dev>"
	DefaultMailTo    = "accounts@buildatscale.tv"
)

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

type Config struct {
	Port string
	Env  string

	YouTubeAPIKey      string
	YouTubeChannelID   string
	PlaylistMaxResults int
	VideoMaxResults    int
	IngestOnStart      bool

	StoreBackend StoreBackend
	DBURL        string
	RedisURL     string

	ClickhouseURL      string
	ClickhouseDatabase string
	ClickhouseUsername string
	ClickhousePassword string

	ResendAPIKey     string
	ResendAudienceID string
	MailFrom         string
	MailTo           string

	AllowedOrigins []string
	AdminAPIKey    string
}

// Load reads the given .env files (default ".env"), ignoring missing ones,
// and builds a Config from the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:               getParam("PORT", "8080"),
		Env:                getParam("ENV", "development"),
		YouTubeAPIKey:      getParam("YOUTUBE_API_KEY", ""),
		YouTubeChannelID:   getParam("YOUTUBE_CHANNEL_ID", DefaultChannelID),
		StoreBackend:       StoreBackend(strings.ToLower(getParam("STORE_BACKEND", string(StoreMemory)))),
		DBURL:              getParam("DB_URL", ""),
		RedisURL:           getParam("REDIS_URL", ""),
		ClickhouseURL:      getParam("CLICKHOUSE_URL", ""),
		ClickhouseDatabase: getParam("CLICKHOUSE_DATABASE", "default"),
		ClickhouseUsername: getParam("CLICKHOUSE_USERNAME", "default"),
		ClickhousePassword: getParam("CLICKHOUSE_PASSWORD", ""),
		ResendAPIKey:       getParam("RESEND_API_KEY", ""),
		ResendAudienceID:   getParam("RESEND_AUDIENCE_ID", ""),
		MailFrom:           getParam("MAIL_FROM", DefaultMailFrom),
		MailTo:             getParam("MAIL_TO", DefaultMailTo),
		AllowedOrigins:     splitList(getParam("ALLOWED_ORIGINS", "")),
		AdminAPIKey:        getParam("ADMIN_API_KEY", ""),
	}

	var err error
	if cfg.PlaylistMaxResults, err = getInt("PLAYLIST_MAX_RESULTS", 50); err != nil {
		return nil, err
	}
	if cfg.VideoMaxResults, err = getInt("VIDEO_MAX_RESULTS", 50); err != nil {
		return nil, err
	}
	if cfg.IngestOnStart, err = getBool("INGEST_ON_START", true); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required when STORE_BACKEND=postgres")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.PlaylistMaxResults <= 0 || c.VideoMaxResults <= 0 {
		return errors.New("max results must be positive")
	}
	return nil
}

func getParam(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getParam(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := getParam(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
