// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	RedditBaseURL         string
	UserAgent             string
	AccessToken           string
	ProxyURLs             []string
	MaxRetries            int
	RequestTimeout        time.Duration
	RateLimitRPS          float64
	RateLimitBurst        int
	MoreChildrenBatchSize int
	ExpandMaxConcurrency  int
	ServerPort            string
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	LogLevel              string
	LogPretty             bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	proxyURLs, err := parseProxyURLs(os.Getenv("REDDIT_PROXY_URLS"))
	if err != nil {
		return nil, err
	}

	userAgent := os.Getenv("REDDIT_USER_AGENT")
	if userAgent == "" {
		userAgent = "snoowrap-go/1.0"
		log.Info().Str("user_agent", userAgent).Msg("No user agent specified, using default")
	}

	cfg := &Config{
		RedditBaseURL:         strings.TrimRight(getEnv("REDDIT_BASE_URL", "https://www.reddit.com"), "/"),
		UserAgent:             userAgent,
		AccessToken:           os.Getenv("REDDIT_ACCESS_TOKEN"),
		ProxyURLs:             proxyURLs,
		MaxRetries:            getEnvInt("PROXY_MAX_RETRIES", 3),
		RequestTimeout:        getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimitRPS:          getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:        getEnvInt("RATE_LIMIT_BURST", 5),
		MoreChildrenBatchSize: getEnvInt("MORECHILDREN_BATCH_SIZE", 100),
		ExpandMaxConcurrency:  getEnvInt("EXPAND_MAX_CONCURRENCY", 4),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		ReadTimeout:           getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:          getEnvDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPretty:             getEnvBool("LOG_PRETTY", false),
	}

	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("PROXY_MAX_RETRIES must be at least 1, got %d", cfg.MaxRetries)
	}
	if cfg.MoreChildrenBatchSize < 1 || cfg.MoreChildrenBatchSize > 100 {
		return nil, fmt.Errorf("MORECHILDREN_BATCH_SIZE must be between 1 and 100, got %d", cfg.MoreChildrenBatchSize)
	}
	if _, err := url.Parse(cfg.RedditBaseURL); err != nil {
		return nil, fmt.Errorf("invalid REDDIT_BASE_URL %s: %w", cfg.RedditBaseURL, err)
	}

	return cfg, nil
}

// parseProxyURLs splits a comma separated proxy list. An empty list means
// direct connections.
func parseProxyURLs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var proxyURLs []string
	for _, proxy := range strings.Split(raw, ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.HasPrefix(proxy, "http://") && !strings.HasPrefix(proxy, "https://") && !strings.HasPrefix(proxy, "socks5://") {
			return nil, fmt.Errorf("invalid proxy URL format, must start with http://, https:// or socks5://: %s", proxy)
		}

		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %s: %w", proxy, err)
		}

		proxyURLs = append(proxyURLs, proxy)
	}

	log.Info().Int("proxies", len(proxyURLs)).Msg("Loaded proxy URLs from configuration")
	return proxyURLs, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
