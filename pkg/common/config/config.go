package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database
	DBDriver         string // "sqlite" or "postgres"
	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	OverviewCacheTTL time.Duration

	// Kafka
	KafkaBrokers       []string
	KafkaGroupID       string
	PostingEventsTopic string
	EngagementTopic    string

	// Scheduling
	PostingSchedule      []string // clock times, e.g. 09:00,15:00,21:00
	SchedulerTick        time.Duration
	CleanupRetentionDays int
	AnalyticsWindowDays  int
	PostingBatchSize     int
	MaxPublishAttempts   int

	// Collaborator deadlines
	PublishTimeout    time.Duration
	SynthesizeTimeout time.Duration

	// Content
	TemplateCatalogPath string
	CityCatalogPath     string
	CollectionLimit     int
	GenerationLimit     int

	// Instagram
	InstagramUsername string
	InstagramPassword string
	InstagramAPIBase  string

	// YouTube
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeAPIBase      string

	// WordPress blog
	WordPressURL      string
	WordPressUsername string
	WordPressPassword string

	// Reports
	ReportsDir string
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "airbnb_marketing.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "marketing"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "marketing123"),
		PostgresDB:       getEnv("POSTGRES_DB", "airbnb_marketing"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getIntEnv("REDIS_DB", 0),
		OverviewCacheTTL: getDuration("OVERVIEW_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:       getStringListEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "airbnb-marketing"),
		PostingEventsTopic: getEnv("POSTING_EVENTS_TOPIC", "marketing.posting-attempts"),
		EngagementTopic:    getEnv("ENGAGEMENT_TOPIC", "marketing.engagement"),

		PostingSchedule:      getStringListEnv("POSTING_SCHEDULE", []string{"09:00", "15:00", "21:00"}),
		SchedulerTick:        getDuration("SCHEDULER_TICK", time.Minute),
		CleanupRetentionDays: getIntEnv("CLEANUP_RETENTION_DAYS", 90),
		AnalyticsWindowDays:  getIntEnv("ANALYTICS_WINDOW_DAYS", 30),
		PostingBatchSize:     getIntEnv("POSTING_BATCH_SIZE", 10),
		MaxPublishAttempts:   getIntEnv("MAX_PUBLISH_ATTEMPTS", 3),

		PublishTimeout:    getDuration("PUBLISH_TIMEOUT", 30*time.Second),
		SynthesizeTimeout: getDuration("SYNTHESIZE_TIMEOUT", 20*time.Second),

		TemplateCatalogPath: getEnv("TEMPLATE_CATALOG_PATH", ""),
		CityCatalogPath:     getEnv("CITY_CATALOG_PATH", ""),
		CollectionLimit:     getIntEnv("COLLECTION_LIMIT", 50),
		GenerationLimit:     getIntEnv("GENERATION_LIMIT", 20),

		InstagramUsername: getEnv("INSTAGRAM_USERNAME", ""),
		InstagramPassword: getEnv("INSTAGRAM_PASSWORD", ""),
		InstagramAPIBase:  getEnv("INSTAGRAM_API_BASE", "https://graph.facebook.com/v19.0"),

		YouTubeClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
		YouTubeClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),
		YouTubeAPIBase:      getEnv("YOUTUBE_API_BASE", "https://www.googleapis.com/upload/youtube/v3"),

		WordPressURL:      getEnv("WORDPRESS_URL", ""),
		WordPressUsername: getEnv("WORDPRESS_USERNAME", ""),
		WordPressPassword: getEnv("WORDPRESS_PASSWORD", ""),

		ReportsDir: getEnv("REPORTS_DIR", "reports"),
	}
}

// EnabledPlatforms returns the platforms whose publish credentials are
// configured. A platform without credentials is skipped, not an error.
func (c *Config) EnabledPlatforms() []string {
	var platforms []string
	if c.InstagramUsername != "" && c.InstagramPassword != "" {
		platforms = append(platforms, "instagram")
	}
	if c.YouTubeClientID != "" && c.YouTubeClientSecret != "" {
		platforms = append(platforms, "youtube")
	}
	if c.WordPressURL != "" && c.WordPressUsername != "" && c.WordPressPassword != "" {
		platforms = append(platforms, "blog")
	}
	return platforms
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
