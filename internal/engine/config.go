package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// Verifier providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey     string
	YouTubeAPIBase    string // empty = library default endpoint
	YouTubeCategoryID string

	VerifierProvider    string
	VerifierAPIKey      string
	VerifierAPIBase     string
	VerifierModel       string
	VerifierAPIVersion  string
	VerifierMaxTokens   int
	VerifierTemperature float64

	CallTimeout     time.Duration // per external call
	Retry           RetryConfig
	VerifyBatchSize int
	VerifyInterval  time.Duration
	VerifyBurst     int

	SearchDebounce     time.Duration
	SearchMaxResults   int
	PlaylistMaxResults int

	StudentID     string
	StudentGrade  int
	StudentTopics []string

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	MCPPort  string
	LogLevel string
}

// LoadConfig reads the configuration from the environment.
// Secrets have no defaults.
func LoadConfig() Config {
	rc := DefaultRetryConfig
	rc.MaxRetries = env.Int("RETRY_MAX", rc.MaxRetries)

	return Config{
		YouTubeAPIKey:     env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIBase:    env.Str("YOUTUBE_API_BASE", ""),
		YouTubeCategoryID: env.Str("YOUTUBE_CATEGORY_ID", EducationCategoryID),

		VerifierProvider:    strings.ToLower(env.Str("VERIFIER_PROVIDER", ProviderAnthropic)),
		VerifierAPIKey:      env.Str("VERIFIER_API_KEY", ""),
		VerifierAPIBase:     env.Str("VERIFIER_API_BASE", "https://api.anthropic.com"),
		VerifierModel:       env.Str("VERIFIER_MODEL", "claude-3-opus-20240229"),
		VerifierAPIVersion:  env.Str("VERIFIER_API_VERSION", "2023-06-01"),
		VerifierMaxTokens:   env.Int("VERIFIER_MAX_TOKENS", 1024),
		VerifierTemperature: env.Float("VERIFIER_TEMPERATURE", 0),

		CallTimeout:     env.Duration("CALL_TIMEOUT", 10*time.Second),
		Retry:           rc,
		VerifyBatchSize: env.Int("VERIFY_BATCH_SIZE", 3),
		VerifyInterval:  env.Duration("VERIFY_INTERVAL", time.Second),
		VerifyBurst:     env.Int("VERIFY_BURST", 1),

		SearchDebounce:     env.Duration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		SearchMaxResults:   env.Int("SEARCH_MAX_RESULTS", 10),
		PlaylistMaxResults: env.Int("PLAYLIST_MAX_RESULTS", 5),

		StudentID:     env.Str("STUDENT_ID", "ST001"),
		StudentGrade:  env.Int("STUDENT_GRADE", 6),
		StudentTopics: env.List("STUDENT_TOPICS", "algebra,chemical_reactions"),

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),

		MCPPort:  env.Str("MCP_PORT", "8892"),
		LogLevel: env.Str("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if c.YouTubeAPIKey == "" {
		return errors.New("YOUTUBE_API_KEY is not set")
	}
	if c.CallTimeout <= 0 {
		return errors.New("CALL_TIMEOUT must be positive")
	}
	return nil
}

// ValidateVerifier checks the settings content verification needs.
func (c Config) ValidateVerifier() error {
	if c.VerifierAPIKey == "" {
		return errors.New("VERIFIER_API_KEY is not set")
	}
	switch c.VerifierProvider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return errors.New("VERIFIER_PROVIDER must be anthropic or openai")
	}
	return nil
}
