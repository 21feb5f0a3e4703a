// Package config loads application configuration from environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable Load reads.
const EnvPrefix = "REPOANALYZER"

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	keyConfigFile           = "config"
	keyGitHubToken          = "github_token"
	keyOpenAIAPIKey         = "openai_api_key"
	keyOpenAIModel          = "openai_model"
	keyOpenAIBaseURL        = "openai_base_url"
	keyListenAddr           = "listen_addr"
	keyCORSOrigins          = "cors_origins"
	keyGraphQLConcurrency   = "graphql_concurrency"
	keyNarrativeConcurrency = "narrative_concurrency"
	keyNarrativeTimeout     = "narrative_timeout"
	keyLogLevel             = "log_level"
	keyLogFormat            = "log_format"
)

// Config holds the application configuration.
type Config struct {
	GitHubToken          string
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIBaseURL        string
	ListenAddr           string
	CORSOrigins          []string
	GraphQLConcurrency   int
	NarrativeConcurrency int
	NarrativeTimeout     time.Duration
	LogLevel             slog.Level
	LogFormat            string
}

// HasGitHubCredentials returns true when a GitHub token is configured. Every
// lookup against GitHub requires one.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// HasNarrator returns true when an OpenAI API key is configured. Without one
// every narrative degrades to an error message.
func (c *Config) HasNarrator() bool {
	return c.OpenAIAPIKey != ""
}

// Load reads configuration and returns a validated Config. Values come from
// REPOANALYZER_* environment variables, then from the YAML file named by
// REPOANALYZER_CONFIG, then from defaults: REPOANALYZER_OPENAI_MODEL
// (gpt-4o-mini), REPOANALYZER_LISTEN_ADDR (127.0.0.1:8000),
// REPOANALYZER_CORS_ORIGINS (*), REPOANALYZER_GRAPHQL_CONCURRENCY (5),
// REPOANALYZER_NARRATIVE_CONCURRENCY (2), REPOANALYZER_NARRATIVE_TIMEOUT (60s),
// REPOANALYZER_LOG_LEVEL (info), REPOANALYZER_LOG_FORMAT (text).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(keyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(keyListenAddr, "127.0.0.1:8000")
	v.SetDefault(keyCORSOrigins, "*")
	v.SetDefault(keyGraphQLConcurrency, 5)
	v.SetDefault(keyNarrativeConcurrency, 2)
	v.SetDefault(keyNarrativeTimeout, "60s")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, LogFormatText)

	if path := v.GetString(keyConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	graphqlConcurrency, err := positiveInt(v, keyGraphQLConcurrency)
	if err != nil {
		return nil, err
	}

	narrativeConcurrency, err := positiveInt(v, keyNarrativeConcurrency)
	if err != nil {
		return nil, err
	}

	timeoutStr := v.GetString(keyNarrativeTimeout)
	narrativeTimeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("%s has invalid duration %q: %w", envName(keyNarrativeTimeout), timeoutStr, err)
	}
	if narrativeTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", envName(keyNarrativeTimeout), narrativeTimeout)
	}

	var logLevel slog.Level
	levelStr := v.GetString(keyLogLevel)
	if err := logLevel.UnmarshalText([]byte(levelStr)); err != nil {
		return nil, fmt.Errorf("%s has invalid level %q: %w", envName(keyLogLevel), levelStr, err)
	}

	logFormat := strings.ToLower(strings.TrimSpace(v.GetString(keyLogFormat)))
	if logFormat != LogFormatText && logFormat != LogFormatJSON {
		return nil, fmt.Errorf("%s must be %q or %q, got %q", envName(keyLogFormat), LogFormatText, LogFormatJSON, logFormat)
	}

	return &Config{
		GitHubToken:          v.GetString(keyGitHubToken),
		OpenAIAPIKey:         v.GetString(keyOpenAIAPIKey),
		OpenAIModel:          v.GetString(keyOpenAIModel),
		OpenAIBaseURL:        v.GetString(keyOpenAIBaseURL),
		ListenAddr:           v.GetString(keyListenAddr),
		CORSOrigins:          splitList(v.GetString(keyCORSOrigins)),
		GraphQLConcurrency:   graphqlConcurrency,
		NarrativeConcurrency: narrativeConcurrency,
		NarrativeTimeout:     narrativeTimeout,
		LogLevel:             logLevel,
		LogFormat:            logFormat,
	}, nil
}

func positiveInt(v *viper.Viper, key string) (int, error) {
	s := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", envName(key), s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", envName(key), n)
	}
	return n, nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
