package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	KubeConfig string
	KubeMaster string
	LogLevel   string
	LogFormat  string

	HTTPPort    string
	MetricsPort string

	CacheTTL      time.Duration
	HealthTimeout time.Duration
	Retries       int
	BackoffBase   time.Duration
	LabelSelector string

	MockMode     bool
	FallbackHost string
	FallbackPort int32
	ServeStale   bool

	SweepSchedule  string
	PingerInterval time.Duration
}

func Load() (*Config, error) {
	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		KubeConfig:    getEnvChain(envKeyKubeConfig, envKeyKubeConfigFallback),
		KubeMaster:    getEnvChain(envKeyKubeMaster, envKeyKubeMasterFallback),
		LogLevel:      getEnvOrDefault(envKeyLogLevel, "info"),
		LogFormat:     getEnvOrDefault(envKeyLogFormat, "json"),
		HTTPPort:      os.Getenv(envKeyHTTPPort),
		MetricsPort:   os.Getenv(envKeyMetricsPort),
		LabelSelector: os.Getenv(envKeyLabelSelector),
		MockMode:      getEnvBool(getEnvKeyWithValue(envKeyMock, envKeyMockFallback), false),
		FallbackHost:  getEnvChain(envKeyFallbackHost, envKeyFallbackHostFallback),
		ServeStale:    getEnvBool(envKeyServeStale, true),
		SweepSchedule: getEnvOrDefault(envKeySweepSchedule, defaultSweepSchedule),
	}

	var err error

	cfg.CacheTTL, err = getEnvDuration(envKeyCacheTTL, defaultCacheTTL, envMinimumCacheTTL)
	if err != nil {
		return nil, err
	}

	cfg.HealthTimeout, err = getEnvDuration(envKeyHealthTimeout, defaultHealthTimeout, time.Millisecond)
	if err != nil {
		return nil, err
	}

	cfg.BackoffBase, err = getEnvDuration(envKeyBackoffBase, defaultBackoffBase, time.Millisecond)
	if err != nil {
		return nil, err
	}

	cfg.PingerInterval, err = getEnvDuration(envKeyPingerInterval, defaultPingerInterval, envMinimumPingerInterval)
	if err != nil {
		return nil, err
	}

	cfg.Retries, err = getEnvInt(envKeyRetries, defaultRetries)
	if err != nil {
		return nil, err
	}

	if cfg.Retries < 0 {
		return nil, fmt.Errorf("parse %s: must be non-negative, got %d", envKeyRetries, cfg.Retries)
	}

	fallbackPort, err := getEnvInt(getEnvKeyWithValue(envKeyFallbackPort, envKeyFallbackPortFallback), 0)
	if err != nil {
		return nil, err
	}

	cfg.FallbackPort = int32(fallbackPort)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// getEnvChain returns the first non-empty value among the given keys.
func getEnvChain(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}

	return ""
}

// getEnvKeyWithValue returns the first key that is set, so parse errors
// name the key that actually carried the bad value.
func getEnvKeyWithValue(keys ...string) string {
	for _, key := range keys {
		if os.Getenv(key) != "" {
			return key
		}
	}

	return keys[0]
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return parsed, nil
}

func getEnvDuration(key string, defaultValue, minimum time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	if parsed < minimum {
		return 0, fmt.Errorf("parse %s: %s is below minimum %s", key, parsed, minimum)
	}

	return parsed, nil
}
